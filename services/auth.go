package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/RupeshSangoju/quickverdicts-sub001/databases"
	"github.com/RupeshSangoju/quickverdicts-sub001/models"
	templates "github.com/RupeshSangoju/quickverdicts-sub001/templates/html"
)

// Login lockout and reset token lifetimes
const (
	MaxFailedLogins = 5
	LockoutWindow   = 15 * time.Minute
	ResetTokenTTL   = time.Hour
)

// TokenIssuer signs an access token for a user and returns it with its expiry
type TokenIssuer func(subject, role string) (string, time.Time, error)

// AuthService handles accounts, logins and password resets for every user type
type AuthService struct {
	Admins    databases.AdminDatabase
	Attorneys databases.AttorneyDatabase
	Jurors    databases.JurorDatabase
	Attempts  databases.LoginAttemptDatabase
	Resets    databases.PasswordResetDatabase
	Issuer    TokenIssuer
	Mailer    Mailer
	BaseURL   string
}

// LoginResult is a successful login
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Role      string    `json:"role"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
}

// AttorneyRegistration is the sign up form of an attorney
type AttorneyRegistration struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	LawFirm   string `json:"lawFirmName"`
	Phone     string `json:"phoneNumber"`
	State     string `json:"state" validate:"required"`
	BarNumber string `json:"stateBarNumber" validate:"required"`
	TimeZone  string `json:"timeZone"`
}

// JurorRegistration is the sign up form of a juror
type JurorRegistration struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phoneNumber"`
	State    string `json:"state" validate:"required"`
	County   string `json:"county" validate:"required"`
}

var accountMessages = map[string]string{
	"FirstName": "first name is required",
	"LastName":  "last name is required",
	"Name":      "name is required",
	"Email":     "a valid email is required",
	"Password":  "password must be at least 8 characters",
	"State":     "state is required",
	"County":    "county is required",
	"BarNumber": "state bar number is required",
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// account is the part of any user type needed to log in
type account struct {
	id       primitive.ObjectID
	name     string
	email    string
	hash     string
	disabled bool
}

func (s *AuthService) findAccount(ctx context.Context, role string, filter bson.M) (*account, error) {
	switch role {
	case models.UserTypeAdmin:
		a, err := s.Admins.FindOne(ctx, filter)
		if err != nil {
			return nil, err
		}
		return &account{id: a.ID, name: a.Name, email: a.Email, hash: a.PasswordHash, disabled: !a.Active}, nil
	case models.UserTypeAttorney:
		a, err := s.Attorneys.FindOne(ctx, filter)
		if err != nil {
			return nil, err
		}
		return &account{id: a.ID, name: a.FullName(), email: a.Email, hash: a.PasswordHash, disabled: a.IsDeleted}, nil
	case models.UserTypeJuror:
		j, err := s.Jurors.FindOne(ctx, filter)
		if err != nil {
			return nil, err
		}
		return &account{id: j.ID, name: j.Name, email: j.Email, hash: j.PasswordHash, disabled: j.IsDeleted || !j.IsActive}, nil
	}
	return nil, invalid("role must be admin, attorney or juror")
}

func (s *AuthService) updateAccount(ctx context.Context, role string, id primitive.ObjectID, set bson.M) error {
	filter := bson.M{"_id": id}
	update := bson.M{"$set": set}
	var err error
	switch role {
	case models.UserTypeAdmin:
		_, err = s.Admins.UpdateOne(ctx, filter, update)
	case models.UserTypeAttorney:
		_, err = s.Attorneys.UpdateOne(ctx, filter, update)
	case models.UserTypeJuror:
		_, err = s.Jurors.UpdateOne(ctx, filter, update)
	default:
		return invalid("role must be admin, attorney or juror")
	}
	return err
}

func (s *AuthService) recordAttempt(ctx context.Context, email, role, ip string, success bool) {
	if s.Attempts == nil {
		return
	}
	_, err := s.Attempts.InsertOne(ctx, models.LoginAttempt{
		ID:        primitive.NewObjectID(),
		Email:     email,
		UserType:  role,
		Success:   success,
		IPAddress: ip,
		CreatedAt: now(),
	})
	if err != nil {
		zap.S().Errorw("failed to record login attempt", "email", email, "error", err)
	}
}

// Login checks the password and issues a token. After MaxFailedLogins failures within
// LockoutWindow the account is refused until the window passes.
func (s *AuthService) Login(ctx context.Context, role, email, password, ip string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalid("email and password are required")
	}

	if s.Attempts != nil {
		failures, err := s.Attempts.CountDocuments(ctx, bson.M{
			"email":     email,
			"userType":  role,
			"success":   false,
			"createdAt": bson.M{"$gte": now().Add(-LockoutWindow)},
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to count login attempts")
		}
		if failures >= MaxFailedLogins {
			zap.S().Warnw("login refused, account locked", "email", email, "userType", role)
			return nil, ErrTooManyAttempts
		}
	}

	acct, err := s.findAccount(ctx, role, bson.M{"email": email})
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to load account")
	}
	if acct == nil || acct.disabled || bcrypt.CompareHashAndPassword([]byte(acct.hash), []byte(password)) != nil {
		s.recordAttempt(ctx, email, role, ip, false)
		return nil, ErrInvalidCredentials
	}
	s.recordAttempt(ctx, email, role, ip, true)

	t := now()
	if err := s.updateAccount(ctx, role, acct.id, bson.M{"lastLoginAt": t}); err != nil {
		zap.S().Warnw("failed to stamp last login", "userId", acct.id.Hex(), "error", err)
	}
	if s.Attempts != nil {
		if _, err := s.Attempts.DeleteMany(ctx, bson.M{"email": email, "userType": role, "success": false}); err != nil {
			zap.S().Warnw("failed to clear failed login attempts", "email", email, "error", err)
		}
	}
	return s.issue(acct, role)
}

func (s *AuthService) issue(acct *account, role string) (*LoginResult, error) {
	if s.Issuer == nil {
		return nil, errors.New("token issuer is not configured")
	}
	token, exp, err := s.Issuer(acct.id.Hex(), role)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue token")
	}
	return &LoginResult{Token: token, ExpiresAt: exp, Role: role, UserID: acct.id.Hex(), Name: acct.name}, nil
}

func (s *AuthService) emailTaken(ctx context.Context, role, email string) (bool, error) {
	var n int64
	var err error
	switch role {
	case models.UserTypeAttorney:
		n, err = s.Attorneys.CountDocuments(ctx, bson.M{"email": email})
	case models.UserTypeJuror:
		n, err = s.Jurors.CountDocuments(ctx, bson.M{"email": email})
	}
	if err != nil {
		return false, errors.Wrap(err, "failed to check email")
	}
	return n > 0, nil
}

// RegisterAttorney creates an unverified attorney account
func (s *AuthService) RegisterAttorney(ctx context.Context, in AttorneyRegistration) (*models.Attorney, error) {
	in.Email = normalizeEmail(in.Email)
	in.FirstName, in.LastName = strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	if msgs := validationMessages(in, accountMessages); len(msgs) > 0 {
		return nil, invalid(msgs...)
	}
	taken, err := s.emailTaken(ctx, models.UserTypeAttorney, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, conflict(CodeEmailTaken, "an account with this email already exists")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}
	t := now()
	a := models.Attorney{
		ID:           primitive.NewObjectID(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: string(hash),
		LawFirm:      strings.TrimSpace(in.LawFirm),
		Phone:        strings.TrimSpace(in.Phone),
		State:        strings.TrimSpace(in.State),
		BarNumber:    strings.TrimSpace(in.BarNumber),
		TimeZone:     in.TimeZone,
		CreatedAt:    t,
		UpdatedAt:    t,
	}
	if _, err := s.Attorneys.InsertOne(ctx, a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, conflict(CodeEmailTaken, "an account with this email already exists")
		}
		return nil, errors.Wrap(err, "failed to insert attorney")
	}
	return &a, nil
}

// RegisterJuror creates an unverified juror account
func (s *AuthService) RegisterJuror(ctx context.Context, in JurorRegistration) (*models.Juror, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if msgs := validationMessages(in, accountMessages); len(msgs) > 0 {
		return nil, invalid(msgs...)
	}
	taken, err := s.emailTaken(ctx, models.UserTypeJuror, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, conflict(CodeEmailTaken, "an account with this email already exists")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}
	t := now()
	j := models.Juror{
		ID:           primitive.NewObjectID(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(in.Phone),
		State:        strings.TrimSpace(in.State),
		County:       strings.TrimSpace(in.County),
		IsActive:     true,
		CreatedAt:    t,
		UpdatedAt:    t,
	}
	if _, err := s.Jurors.InsertOne(ctx, j); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, conflict(CodeEmailTaken, "an account with this email already exists")
		}
		return nil, errors.Wrap(err, "failed to insert juror")
	}
	return &j, nil
}

// VerifyAccount marks an attorney or juror verified after admin review
func (s *AuthService) VerifyAccount(ctx context.Context, role string, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "isDeleted": false}
	update := bson.M{"$set": bson.M{"isVerified": true, "updatedAt": now()}}
	var matched int64
	switch role {
	case models.UserTypeAttorney:
		res, err := s.Attorneys.UpdateOne(ctx, filter, update)
		if err != nil {
			return errors.Wrap(err, "failed to verify attorney")
		}
		matched = res.MatchedCount
	case models.UserTypeJuror:
		res, err := s.Jurors.UpdateOne(ctx, filter, update)
		if err != nil {
			return errors.Wrap(err, "failed to verify juror")
		}
		matched = res.MatchedCount
	default:
		return invalid("only attorneys and jurors are verified")
	}
	if matched == 0 {
		return notFound(role)
	}
	return nil
}

// RequestPasswordReset emails a single use reset link. Unknown emails succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, role, email string) error {
	email = normalizeEmail(email)
	acct, err := s.findAccount(ctx, role, bson.M{"email": email})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			zap.S().Infow("password reset for unknown email", "email", email, "userType", role)
			return nil
		}
		var verr *ValidationError
		if errors.As(err, &verr) {
			return err
		}
		return errors.Wrap(err, "failed to load account")
	}

	token := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	t := now()
	reset := models.PasswordReset{
		ID:        primitive.NewObjectID(),
		UserID:    acct.id,
		UserType:  role,
		TokenHash: hashToken(token),
		ExpiresAt: t.Add(ResetTokenTTL),
		CreatedAt: t,
	}
	if _, err := s.Resets.InsertOne(ctx, reset); err != nil {
		return errors.Wrap(err, "failed to store reset token")
	}
	if s.Mailer == nil {
		zap.S().Warnw("no mailer configured, reset link not sent", "userId", acct.id.Hex())
		return nil
	}
	link := strings.TrimRight(s.BaseURL, "/") + "/reset-password?token=" + token
	plain := "Reset your QuickVerdicts password within one hour: " + link
	if err := s.Mailer.Send(ctx, acct.name, acct.email, "Reset your password", plain, templates.RenderPasswordResetEmail(acct.name, link)); err != nil {
		return errors.Wrap(err, "failed to send reset email")
	}
	return nil
}

// ResetPassword spends a reset token and sets the new password
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < 8 {
		return invalid("password must be at least 8 characters")
	}
	t := now()
	reset, err := s.Resets.FindOne(ctx, bson.M{"tokenHash": hashToken(token), "usedAt": nil, "expiresAt": bson.M{"$gt": t}})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return invalid("reset link is invalid or expired")
		}
		return errors.Wrap(err, "failed to load reset token")
	}
	res, err := s.Resets.UpdateOne(ctx, bson.M{"_id": reset.ID, "usedAt": nil}, bson.M{"$set": bson.M{"usedAt": t}})
	if err != nil {
		return errors.Wrap(err, "failed to spend reset token")
	}
	if res.MatchedCount == 0 {
		return invalid("reset link is invalid or expired")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}
	if err := s.updateAccount(ctx, reset.UserType, reset.UserID, bson.M{"passwordHash": string(hash), "updatedAt": t}); err != nil {
		return errors.Wrap(err, "failed to update password")
	}
	return nil
}
