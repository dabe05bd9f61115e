package user

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/HectorRP3/PhysioCareApi/internal/platform/apperr"
	"github.com/HectorRP3/PhysioCareApi/internal/platform/auth"
)

// ProfileDirectory resolves the profile id linked to a user id. The patient
// and physio directories both satisfy it.
type ProfileDirectory interface {
	IDByUserID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

type Service struct {
	users    Repository
	patients ProfileDirectory
	physios  ProfileDirectory
	tokens   *auth.TokenService
}

func NewService(users Repository, patients, physios ProfileDirectory, tokens *auth.TokenService) *Service {
	return &Service{users: users, patients: patients, physios: physios, tokens: tokens}
}

// LoginResult is what a successful login returns to the client.
type LoginResult struct {
	Token     string
	Role      auth.Role
	SubjectID uuid.UUID
}

// Login checks credentials, resolves the subject's profile id through the
// user linkage, stores the device push token, and issues a token. The
// subject id carried in the token is the Patient/Physio profile id so that
// self-access checks need no extra lookup; admins carry no subject.
func (s *Service) Login(ctx context.Context, login, password, pushToken string) (*LoginResult, error) {
	u, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		return nil, apperr.E(apperr.ErrUnauthenticated, "Login incorrecto")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.E(apperr.ErrUnauthenticated, "Login incorrecto")
	}

	subjectID := uuid.Nil
	switch u.Role {
	case auth.RolePatient:
		subjectID, err = s.patients.IDByUserID(ctx, u.ID)
	case auth.RolePhysio:
		subjectID, err = s.physios.IDByUserID(ctx, u.ID)
	}
	if err != nil {
		return nil, apperr.E(apperr.ErrUnauthenticated, "Usuario no encontrado")
	}

	if err := s.users.UpdatePushToken(ctx, u.ID, pushToken); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(u.Login, u.Role, subjectID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Role: u.Role, SubjectID: subjectID}, nil
}

// Logout clears the stored push token. The identity token itself stays valid
// until its natural expiry; there is no server-side revocation list.
func (s *Service) Logout(ctx context.Context, identity auth.Identity) error {
	u, err := s.users.GetByLogin(ctx, identity.Login)
	if err != nil {
		return err
	}
	return s.users.UpdatePushToken(ctx, u.ID, "")
}

// Register creates a credential. Only admins reach this path; role gating
// happens at the route.
func (s *Service) Register(ctx context.Context, u *User, password string) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if len(password) < 3 {
		return apperr.E(apperr.ErrValidation, "password must have at least 3 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return s.users.Create(ctx, u)
}

// PushToken returns the stored device token for a user, used by the
// appointment notification path. An empty string means "no device".
func (s *Service) PushToken(ctx context.Context, userID uuid.UUID) (string, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.PushToken, nil
}
