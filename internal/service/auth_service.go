package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"sagesilk/internal/logger"
	"sagesilk/internal/models"
	"sagesilk/internal/repository"

	validation "github.com/go-ozzo/ozzo-validation"
)

// User-facing messages rendered on the signup and login forms.
const (
	MsgFillAllFields      = "Please fill in all the fields."
	MsgInvalidUsername    = "Username must be 3 to 15 letters or numbers."
	MsgUsernameTaken      = "This username is already taken. Please choose another."
	MsgInvalidEmail       = "Enter a valid email address."
	MsgEmailTaken         = "This email is already registered. Try logging in or use a different email."
	MsgWeakPassword       = "Password should be at least 8 characters long and include a mix of upper and lowercase letters and numbers."
	MsgPasswordTooLong    = "Password must be at most 72 bytes long."
	MsgSignupFailed       = "Signup failed. Please try again."
	MsgInvalidCredentials = "Invalid username or password."
	MsgLoginFailed        = "An error occurred during login."
	MsgLogoutFailed       = "An error occurred during logout."
)

// Audit event types.
const (
	AuditSignup      = "SIGNUP"
	AuditLogin       = "LOGIN"
	AuditLoginFailed = "LOGIN_FAILED"
	AuditLogout      = "LOGOUT"
)

const (
	minPasswordLen   = 8
	// bcrypt refuses longer inputs.
	maxPasswordBytes = 72
)

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9]{3,15}$`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type TokenIssuer interface {
	Issue(subject string) (string, models.Identity, error)
	Verify(ctx context.Context, token string) (models.Identity, error)
	Revoke(ctx context.Context, id models.Identity) error
}

type auditAppender interface {
	Append(ctx context.Context, e models.AuditEvent) error
}

// SignUpInput is the signup form as submitted.
type SignUpInput struct {
	Username string
	Email    string
	Password string
}

// Session is the result of a successful signup or login.
type Session struct {
	Token    string
	Identity models.Identity
}

// AuthService handles user auth logic.
type AuthService struct {
	users  repository.Credentials
	hasher PasswordHasher
	tokens TokenIssuer
	audit  auditAppender
	log    *logger.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users repository.Credentials, hasher PasswordHasher, tokens TokenIssuer, audit auditAppender, log *logger.Logger) *AuthService {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthService{users: users, hasher: hasher, tokens: tokens, audit: audit, log: log}
}

func (in SignUpInput) normalized() SignUpInput {
	return SignUpInput{
		Username: strings.TrimSpace(in.Username),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: in.Password,
	}
}

// validate returns every format problem of the input. Empty fields are only
// reported once, by MsgFillAllFields.
func (in SignUpInput) validate() []string {
	var msgs []string
	if in.Username == "" || in.Email == "" || in.Password == "" {
		msgs = append(msgs, MsgFillAllFields)
	}
	if err := validation.Validate(in.Username, validation.Match(usernameRe).Error(MsgInvalidUsername)); err != nil {
		msgs = append(msgs, err.Error())
	}
	if err := validation.Validate(in.Email, validation.Match(emailRe).Error(MsgInvalidEmail)); err != nil {
		msgs = append(msgs, err.Error())
	}
	if err := validation.Validate(in.Password, validation.By(passwordPolicy)); err != nil {
		msgs = append(msgs, err.Error())
	}
	return msgs
}

// passwordPolicy requires 8 characters to 72 bytes with an upper case
// letter, a lower case letter and a digit.
func passwordPolicy(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if len(s) > maxPasswordBytes {
		return errors.New(MsgPasswordTooLong)
	}
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if len([]rune(s)) < minPasswordLen || !upper || !lower || !digit {
		return errors.New(MsgWeakPassword)
	}
	return nil
}

// SignUp validates the form, creates the user and issues a session token.
// Validation and conflict messages are collected together; if any conflict
// is present the error kind is KindConflict.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (Session, error) {
	in = in.normalized()
	msgs := in.validate()
	conflict := false

	if in.Username != "" {
		u, err := s.users.FindByUsername(ctx, in.Username)
		if err != nil {
			return Session{}, internalError(MsgSignupFailed, err)
		}
		if u != nil {
			msgs = append(msgs, MsgUsernameTaken)
			conflict = true
		}
	}
	if in.Email != "" {
		u, err := s.users.FindByEmail(ctx, in.Email)
		if err != nil {
			return Session{}, internalError(MsgSignupFailed, err)
		}
		if u != nil {
			msgs = append(msgs, MsgEmailTaken)
			conflict = true
		}
	}

	if len(msgs) > 0 {
		kind := KindValidation
		if conflict {
			kind = KindConflict
		}
		return Session{}, &Error{Kind: kind, Messages: msgs}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Session{}, internalError(MsgSignupFailed, err)
	}

	if _, err := s.users.CreateUser(ctx, in.Username, in.Email, hash); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return Session{}, &Error{Kind: KindConflict, Messages: []string{MsgUsernameTaken}, Err: err}
		case errors.Is(err, repository.ErrDuplicateEmail):
			return Session{}, &Error{Kind: KindConflict, Messages: []string{MsgEmailTaken}, Err: err}
		default:
			return Session{}, internalError(MsgSignupFailed, err)
		}
	}

	token, id, err := s.tokens.Issue(in.Username)
	if err != nil {
		return Session{}, internalError(MsgSignupFailed, err)
	}
	s.record(ctx, AuditSignup, in.Username, nil)
	return Session{Token: token, Identity: id}, nil
}

// Login checks credentials and issues a session token. Missing fields, an
// unknown username and a wrong password all yield the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, invalidCredentials()
	}

	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return Session{}, internalError(MsgLoginFailed, err)
	}
	if u == nil {
		// Spend the same bcrypt work as a real comparison.
		s.hasher.Verify(password, s.placeholderHash())
		s.record(ctx, AuditLoginFailed, LoggableUsername(username), nil)
		return Session{}, invalidCredentials()
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		s.record(ctx, AuditLoginFailed, LoggableUsername(username), nil)
		return Session{}, invalidCredentials()
	}

	token, id, err := s.tokens.Issue(u.Username)
	if err != nil {
		return Session{}, internalError(MsgLoginFailed, err)
	}
	s.record(ctx, AuditLogin, u.Username, nil)
	return Session{Token: token, Identity: id}, nil
}

// Logout revokes the token behind id when a revocation backend is configured.
// Logging out an anonymous identity is a no-op.
func (s *AuthService) Logout(ctx context.Context, id models.Identity) error {
	if !id.IsAuthenticated() {
		return nil
	}
	if err := s.tokens.Revoke(ctx, id); err != nil {
		return internalError(MsgLogoutFailed, fmt.Errorf("revoke token for %q: %w", id.Username, err))
	}
	s.record(ctx, AuditLogout, id.Username, nil)
	return nil
}

// Identify resolves a cookie token to an identity. Any failure means anonymous.
func (s *AuthService) Identify(ctx context.Context, token string) (models.Identity, error) {
	id, err := s.tokens.Verify(ctx, token)
	if err != nil {
		return models.Anonymous, err
	}
	return id, nil
}

// LoggableUsername returns the trimmed username when it has the shape of a
// username and "" otherwise, so a password typed into the username field is
// never logged or stored.
func LoggableUsername(username string) string {
	username = strings.TrimSpace(username)
	if !usernameRe.MatchString(username) {
		return ""
	}
	return username
}

func (s *AuthService) record(ctx context.Context, typ, username string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	ev := models.AuditEvent{Type: typ, Username: username}
	if meta != nil {
		ev.Metadata = meta
	}
	if err := s.audit.Append(ctx, ev); err != nil {
		s.log.Warnw("audit_append_failed", "type", typ, "username", username, "err", err)
	}
}

func (s *AuthService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("placeholder-Passw0rd")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func invalidCredentials() *Error {
	return &Error{Kind: KindAuthentication, Messages: []string{MsgInvalidCredentials}, Err: ErrInvalidCredentials}
}
