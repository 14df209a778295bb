package model

import "github.com/golang-jwt/jwt/v5"

// AdminClaims are JWT claims for census administrators
type AdminClaims struct {
	AdminID string `json:"adminId"`
	jwt.RegisteredClaims
}

// EnumeratorClaims are JWT claims for field enumerators, scoped to one questionnaire
type EnumeratorClaims struct {
	EnumeratorID    string `json:"enumeratorId"`
	QuestionnaireID string `json:"questionnaireId"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for admin login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful admin login
type LoginResponse struct {
	Token   string `json:"token"`
	AdminID string `json:"adminId"`
}

// EnumeratorTokenRequest is the request body for issuing an enumerator token
type EnumeratorTokenRequest struct {
	QuestionnaireID string `json:"questionnaireId"`
}

// EnumeratorTokenResponse carries a questionnaire-scoped enumerator token
type EnumeratorTokenResponse struct {
	Token        string `json:"token"`
	EnumeratorID string `json:"enumeratorId"`
}
