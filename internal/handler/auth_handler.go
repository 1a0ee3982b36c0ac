// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/authapp/internal/auth"
	"github.com/hitoshi/authapp/internal/middleware"
	"github.com/hitoshi/authapp/internal/model"
)

const (
	msgSignUpSuccess      = "User created successfully"
	msgSignInSuccess      = "Sign in successful"
	msgInvalidRequestBody = "Invalid request body"
	msgSignUpServerError  = "Server error during signup"
	msgSignInServerError  = "Server error during signin"

	// maxBodyBytes は認証リクエストボディの上限。
	maxBodyBytes = 1 << 20
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	SignUp(ctx context.Context, in auth.SignUpInput) error
	SignIn(ctx context.Context, email, password string) (*auth.SignInResult, error)
}

// AuthHandler はサインアップ・サインイン関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

type signUpRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type signInResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Token   string        `json:"token"`
	User    model.Profile `json:"user"`
}

type meUser struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type meResponse struct {
	Success bool   `json:"success"`
	User    meUser `json:"user"`
}

// SignUp はアカウントを作成する。トークンは発行しない。
// POST /api/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.service.SignUp(r.Context(), auth.SignUpInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		handleServiceError(w, err, msgSignUpServerError)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, messageResponse{
		Success: true,
		Message: msgSignUpSuccess,
	})
}

// SignIn は資格情報を検証し、トークンと公開プロフィールを返す。
// POST /api/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err, msgSignInServerError)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, signInResponse{
		Success: true,
		Message: msgSignInSuccess,
		Token:   result.Token,
		User:    result.User,
	})
}

// Me はBearerトークンの主体を返す。Bearer認証ミドルウェアの内側に配置する。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.MsgUnauthenticated)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, meResponse{
		Success: true,
		User: meUser{
			ID:        identity.ID,
			FirstName: identity.FirstName,
			LastName:  identity.LastName,
			Email:     identity.Email,
		},
	})
}

// decodeJSON はリクエストボディをデコードする。失敗時は400を書き込みfalseを返す。
// 空のボディは全フィールド未入力として扱い、必須項目の検証をサービスに任せる。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, msgInvalidRequestBody)
		return false
	}
	return true
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// 内部エラーの詳細はログのみに記録し、クライアントにはserverMessageを返す。
func handleServiceError(w http.ResponseWriter, err error, serverMessage string) {
	var authErr *model.AuthError
	if errors.As(err, &authErr) && authErr.IsClientError() {
		middleware.WriteErrorResponse(w, mapAuthErrorToHTTPStatus(authErr.Kind), authErr.Message)
		return
	}

	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w, serverMessage)
}

// mapAuthErrorToHTTPStatus はエラー種別からHTTPステータスコードにマッピングする。
func mapAuthErrorToHTTPStatus(kind model.ErrorKind) int {
	switch kind {
	case model.KindInvalidCredentials, model.KindUnauthenticated:
		return http.StatusUnauthorized
	case model.KindMissingFields,
		model.KindInvalidEmailFormat,
		model.KindWeakPassword,
		model.KindEmailInUse:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
