package middleware

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/cstockton/go-conv"
	"github.com/golang-jwt/jwt/v4"

	"github.com/labstack/echo/v4"
)

// BindAndValidate bind request context and validate request struct.
// Bind includes request body, params, query, headers and jwt claims.
// Validate request struct, response bad request with error message if the request is invalid.
func BindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}

	if err := bindHeader(c.Request().Header, req); err != nil {
		return err
	}

	if err := bindJwt(c, req); err != nil {
		return err
	}

	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return nil
}

func extractJwtToken(c echo.Context) (*jwt.Token, error) {
	data := c.Get("user")
	if data == nil {
		return nil, nil
	}

	token, ok := data.(*jwt.Token)
	if !ok {
		return nil, fmt.Errorf("cannot cast jwt token: %#v", data)
	}

	return token, nil
}

func extractJwtClaims(token *jwt.Token) (*jwt.RegisteredClaims, error) {
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, fmt.Errorf("cannot cast jwt registered claims: %+v", token.Claims)
	}

	return claims, nil
}

// GetUserID returns the subject of the authenticated token, or "" when
// the request carries no token.
func GetUserID(c echo.Context) string {
	token, _ := extractJwtToken(c)
	if token == nil {
		return ""
	}

	claims, _ := extractJwtClaims(token)
	if claims == nil {
		return ""
	}

	return claims.Subject
}

// bindJwt use registered jwt claims to decode jwt to struct by tag `jwt:"payloadField"`
func bindJwt(c echo.Context, dst interface{}) error {
	token, _ := extractJwtToken(c)
	if token == nil {
		return nil
	}

	claims, _ := extractJwtClaims(token)
	if claims == nil {
		return nil
	}

	unix := func(d *jwt.NumericDate) int64 {
		if d == nil {
			return 0
		}
		return d.Unix()
	}

	getValueFn := func(tagValue string) (interface{}, error) {
		var value interface{}
		switch tagValue {
		case "sub":
			value = claims.Subject
		case "iss":
			value = claims.Issuer
		case "aud":
			value = strings.Join(claims.Audience, ";")
		case "jti":
			value = claims.ID
		case "exp":
			value = unix(claims.ExpiresAt)
		case "iat":
			value = unix(claims.IssuedAt)
		case "nbf":
			value = unix(claims.NotBefore)
		default:
			return nil, fmt.Errorf("binding jwt field %s is not supported", tagValue)
		}
		return value, nil
	}

	return bindStruct(dst, "jwt", getValueFn)
}

// bindHeader decode http header to struct by tag `header:"<header_name>"`
// out must be a pointer to a struct
func bindHeader(header http.Header, dst interface{}) error {
	getValueFn := func(tagValue string) (interface{}, error) {
		return header.Get(tagValue), nil
	}

	return bindStruct(dst, "header", getValueFn)
}

// bindStruct decode to struct by custom tag `tagName:"tagValue"`
// dst must be a pointer to a struct
func bindStruct(dst interface{}, tagName string, getValueFn func(tagValue string) (interface{}, error)) error {
	ptr := reflect.ValueOf(dst)
	if ptr.Kind() != reflect.Ptr {
		return fmt.Errorf("non-pointer passed to Unmarshal")
	}

	indirect := reflect.Indirect(ptr)
	structType := indirect.Type()
	elemZero := reflect.Zero(structType)

	numField := elemZero.NumField()
	for i := 0; i < numField; i++ {
		structField := structType.Field(i)
		tagValue := structField.Tag.Get(tagName)
		if tagValue == "-" || tagValue == "" {
			continue
		}

		field := indirect.Field(i)
		value, err := getValueFn(tagValue)
		if err != nil {
			return err
		}
		if err := conv.Infer(field, value); err != nil {
			return fmt.Errorf("cannot parse %s.%s as %s from: %#v / %s",
				structType.Name(), structField.Name, field.Type(), value, err)
		}
	}

	return nil
}
