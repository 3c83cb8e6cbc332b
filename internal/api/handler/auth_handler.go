package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/token"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/util"
)

type AuthHandler struct {
	authService service.IAuthService
}

func NewAuthHandler(authService service.IAuthService) *AuthHandler {
	if authService == nil {
		panic("authService cannot be nil")
	}
	return &AuthHandler{authService: authService}
}

// @Summary register
// @Tags auth
// @Accept json
// @Produce json
// @Param account body dto.RegisterDTO true "username, password and optional email"
// @Success 201 {object} response.Response{data=dto.RegisterResponse} "created"
// @Failure 400 {object} response.ResponseError "missing fields or username taken"
// @Router /auth/register [post]
func (a *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := a.authService.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.CreatedJSON(w, dto.RegisterResponse{Ok: true, ID: user.ID, Username: user.Username})
}

// @Summary login
// @Description issues an access and a refresh token, a guest cart named by X-Session-Id is merged into the user cart
// @Tags auth
// @Accept json
// @Produce json
// @Param X-Session-Id header string false "guest session id to merge"
// @Param credentials body dto.LoginDTO true "username and password"
// @Success 200 {object} response.Response{data=dto.LoginResponse} "success"
// @Failure 401 {object} response.ResponseError "bad credentials"
// @Router /auth/token [post]
func (a *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := a.authService.Login(r.Context(), req.Username, req.Password, util.GetSessionIDFromContext(r.Context()))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.SuccessJSON(w, dto.LoginResponse{
		Access:     res.AccessToken,
		Refresh:    res.RefreshToken,
		ExpiresIn:  expiresIn(res.AccessPayload),
		User:       convertUserModelToDTO(res.User),
		CartMerged: res.CartMerged,
	})
}

// @Summary renew access token
// @Tags auth
// @Accept json
// @Produce json
// @Param refresh body dto.RefreshTokenDTO true "refresh token"
// @Success 200 {object} response.Response{data=dto.RefreshTokenResponse} "success"
// @Failure 401 {object} response.ResponseError "invalid refresh token"
// @Router /auth/refresh [post]
func (a *AuthHandler) ReNewToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	access, payload, err := a.authService.ReNewToken(r.Context(), req.Refresh)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.SuccessJSON(w, dto.RefreshTokenResponse{Access: access, ExpiresIn: expiresIn(payload)})
}

func convertUserModelToDTO(user *model.User) dto.UserDTO {
	if user == nil {
		return dto.UserDTO{}
	}
	return dto.UserDTO{ID: user.ID, Username: user.Username, Email: user.Email}
}

func expiresIn(payload *token.Payload) int {
	if payload == nil {
		return 0
	}
	return int(payload.ExpiredAt.Sub(payload.IssuedAt).Seconds())
}
