package handler

import (
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
)

type link struct {
	Href string `json:"href"`
}

type links map[string]link

// absolute resolves path against the scheme and host the request came in on.
func absolute(c echo.Context, path string) string {
	u := url.URL{Scheme: c.Scheme(), Host: c.Request().Host, Path: path}
	return u.String()
}

func employeeHref(c echo.Context, id int64) string {
	return absolute(c, "/employees/"+strconv.FormatInt(id, 10))
}

func employeeLinks(c echo.Context, id int64) links {
	return links{
		"self":      {Href: employeeHref(c, id)},
		"employees": {Href: absolute(c, "/employees")},
	}
}

func departmentHref(c echo.Context, id int64) string {
	return absolute(c, "/departments/"+strconv.FormatInt(id, 10))
}

func departmentLinks(c echo.Context, id int64) links {
	return links{
		"self":        {Href: departmentHref(c, id)},
		"departments": {Href: absolute(c, "/departments")},
	}
}

func collectionLinks(c echo.Context, path string) links {
	return links{"self": {Href: absolute(c, path)}}
}
