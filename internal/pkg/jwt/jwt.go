package jwt

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var ErrInvalidClaims = errors.New("token is missing employee_id or organization_id")

// Claims identify the caller. Roles are never carried in the token.
type Claims struct {
	EmployeeID     string
	OrganizationID string
}

type Service interface {
	GenerateAccessToken(employeeID, organizationID string) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime time.Duration
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime time.Duration) *JWTService {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(employeeID, organizationID string) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpirationTime).Unix()

	claims := map[string]interface{}{
		"employee_id":     employeeID,
		"organization_id": organizationID,
		"type":            "access",
		"exp":             expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// ClaimsFromMap reads the identity claims of a verified access token.
func ClaimsFromMap(claims map[string]interface{}) (Claims, error) {
	if tokenType, _ := claims["type"].(string); tokenType != "access" {
		return Claims{}, jwt.ErrInvalidJWT()
	}

	employeeID, _ := claims["employee_id"].(string)
	organizationID, _ := claims["organization_id"].(string)
	if employeeID == "" || organizationID == "" {
		return Claims{}, ErrInvalidClaims
	}

	return Claims{EmployeeID: employeeID, OrganizationID: organizationID}, nil
}
