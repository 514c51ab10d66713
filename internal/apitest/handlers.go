package apitest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

// maxPictureSize mirrors the upload limit of the real service.
const maxPictureSize = 5 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"msg": "invalid request body"}},
		})
		return false
	}
	return true
}

// authenticate resolves the bearer token to a user id. Missing, malformed,
// expired and revoked tokens all get the same 401.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const detail = "Could not validate credentials"

		header := r.Header.Get(common.AuthorizationHeader)
		token, ok := strings.CutPrefix(header, common.BearerScheme+" ")
		if !ok || token == "" {
			w.Header().Set("WWW-Authenticate", common.BearerScheme)
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		id, err := userIDFromToken(token, s.secret)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, detail)
			return
		}

		s.mu.Lock()
		_, revoked := s.revoked[token]
		_, exists := s.users[id]
		s.mu.Unlock()

		if revoked || !exists {
			writeDetail(w, http.StatusUnauthorized, detail)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
	})
}

func currentUserID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	u := s.findLocked(req.Email)
	var (
		id   int64
		hash []byte
	)
	if u != nil {
		id, hash = u.identity.ID, u.passwordHash
	}
	s.mu.Unlock()

	if u == nil || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	token, err := s.IssueToken(id)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "Email, username and password are required")
		return
	}

	id, err := s.CreateUser(req.Email, req.Username, req.Password, false)
	if err != nil {
		if errors.Is(err, errEmailTaken) || errors.Is(err, errUsernameTaken) {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := common.MakeRandHexString(16)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	if req.FullName != "" {
		s.users[id.ID].identity.FullName = models.String(req.FullName)
	}
	s.verify[token] = id.ID
	out := s.users[id.ID].identity.Clone()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	id, ok := s.verify[req.Token]
	if ok {
		delete(s.verify, req.Token)
		if u, exists := s.users[id]; exists {
			u.identity.EmailVerified = true
		}
	}
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusBadRequest, "Invalid or expired verification token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Email verified successfully"})
}

// requestPasswordReset answers the same way whether or not the address is
// known so the endpoint cannot be used to probe accounts.
func (s *Server) requestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}

	token, err := common.MakeRandHexString(16)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	if strings.Contains(req.Email, "@") {
		if u := s.findLocked(req.Email); u != nil {
			s.reset[token] = u.identity.ID
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"message": "If the email exists, a reset link has been sent"})
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.NewPassword == "" {
		writeDetail(w, http.StatusBadRequest, "New password is required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	id, ok := s.reset[req.Token]
	if ok {
		delete(s.reset, req.Token)
		if u, exists := s.users[id]; exists {
			u.passwordHash = hash
		}
	}
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully"})
}

func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Identity(currentUserID(r)))
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	var upd models.ProfileUpdate
	if !decode(w, r, &upd) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[currentUserID(r)]

	if upd.Email != nil && !strings.EqualFold(*upd.Email, u.identity.Email) {
		if s.findLocked(*upd.Email) != nil {
			writeDetail(w, http.StatusBadRequest, errEmailTaken.Error())
			return
		}
		u.identity.Email = *upd.Email
		u.identity.EmailVerified = false
	}
	if upd.Username != nil && *upd.Username != u.identity.Username {
		if s.findLocked(*upd.Username) != nil {
			writeDetail(w, http.StatusBadRequest, errUsernameTaken.Error())
			return
		}
		u.identity.Username = *upd.Username
	}
	if upd.FullName != nil {
		u.identity.FullName = models.String(*upd.FullName)
	}
	if upd.Bio != nil {
		u.identity.Bio = models.String(*upd.Bio)
	}

	writeJSON(w, http.StatusOK, u.identity.Clone())
}

func (s *Server) uploadPicture(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPictureSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "File too large")
		return
	}

	ref := pictureRef(uuid.NewString(), path.Base(header.Filename))

	s.mu.Lock()
	s.pictures[ref] = data
	u := s.users[currentUserID(r)]
	u.identity.ProfilePicture = models.String(ref)
	out := u.identity.Clone()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}
