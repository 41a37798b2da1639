package httpx

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/fpedia/fpedia-backend/internal/notify"
	"github.com/fpedia/fpedia-backend/internal/orders"
	"github.com/fpedia/fpedia-backend/internal/otp"
	"github.com/fpedia/fpedia-backend/internal/ratelimit"
	"github.com/fpedia/fpedia-backend/internal/validation"
)

type OTPIssuer interface {
	Issue(ctx context.Context, identifier, purpose string) (*otp.Code, error)
	Verify(ctx context.Context, identifier, code, purpose string) error
}

type OTPHandler struct {
	OTP      OTPIssuer
	Limiter  *ratelimit.Limiter
	Notify   orders.Notifier
	Validate *validatorv10.Validate
}

const (
	otpLimit  = 5
	otpWindow = 10 * time.Minute
)

type sendOTPReq struct {
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Purpose string `json:"purpose" validate:"required,oneof=register reset-password change-password"`
}

// identifier: email lowercase, atau nomor WA ternormalisasi.
func otpIdentifier(email, phone string) (id string, isEmail bool, ok bool) {
	if email != "" {
		return strings.ToLower(strings.TrimSpace(email)), true, true
	}
	if p := notify.NormalizePhone(phone); p != "" {
		return p, false, true
	}
	return "", false, false
}

func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendOTPReq
	if err := validation.DecodeAndValidate(r.Body, &req, h.Validate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	identifier, isEmail, ok := otpIdentifier(req.Email, req.Phone)
	if !ok {
		writeError(w, http.StatusBadRequest, "Phone/Email and purpose required")
		return
	}

	ip, ua := clientInfo(r)
	if !h.Limiter.Allow(r.Context(), ratelimit.Key("otp", ip, ua), otpLimit, otpWindow) {
		writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	code, err := h.OTP.Issue(ctx, identifier, req.Purpose)
	if errors.Is(err, otp.ErrThrottled) {
		writeError(w, http.StatusTooManyRequests, "Too many requests. Please wait a minute.")
		return
	}
	if err != nil {
		log.Printf("otp: issue %s: %v", req.Purpose, err)
		writeError(w, http.StatusInternalServerError, "Failed to generate OTP")
		return
	}

	if isEmail {
		subject, html := notify.OTPEmail(code.Code)
		h.Notify.Email(identifier, subject, html, "")
	} else {
		h.Notify.WhatsApp(identifier, notify.OTPWhatsApp(code.Code), "")
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "OTP sent"})
}

type verifyOTPReq struct {
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Code    string `json:"code" validate:"required,len=6,numeric"`
	Purpose string `json:"purpose" validate:"required,oneof=register reset-password change-password"`
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPReq
	if err := validation.DecodeAndValidate(r.Body, &req, h.Validate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	identifier, _, ok := otpIdentifier(req.Email, req.Phone)
	if !ok {
		writeError(w, http.StatusBadRequest, "Phone/Email, code, and purpose required")
		return
	}

	ip, ua := clientInfo(r)
	if !h.Limiter.Allow(r.Context(), ratelimit.Key("otp", ip, ua), otpLimit, otpWindow) {
		writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	err := h.OTP.Verify(ctx, identifier, req.Code, req.Purpose)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
	case errors.Is(err, otp.ErrNotFound), errors.Is(err, otp.ErrExpired):
		writeJSON(w, http.StatusBadRequest, map[string]any{"valid": false, "error": err.Error()})
	default:
		log.Printf("otp: verify: %v", err)
		writeError(w, http.StatusInternalServerError, "Verification failed")
	}
}
