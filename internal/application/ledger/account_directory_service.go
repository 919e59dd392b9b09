package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/ledger"
	"github.com/schoolerp/backend/internal/domain/partner"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// AccountDirectoryService resolves ledger accounts by their logical key,
// creating them lazily on first use.
type AccountDirectoryService struct {
	accounts     ledger.AccountRepository
	responsibles partner.ResponsibleRepository
	logger       *zap.Logger
}

// NewAccountDirectoryService creates a new AccountDirectoryService
func NewAccountDirectoryService(
	accounts ledger.AccountRepository,
	responsibles partner.ResponsibleRepository,
	logger *zap.Logger,
) *AccountDirectoryService {
	return &AccountDirectoryService{
		accounts:     accounts,
		responsibles: responsibles,
		logger:       logger,
	}
}

// FindOrCreate returns the account identified by (type, responsible, name),
// creating it with a zero balance when it does not exist yet.
//
// Two concurrent callers asking for the same key cannot create two accounts:
// the unique constraint on the key turns the loser's insert into
// shared.ErrAlreadyExists, which is recovered here by re-reading the winner's
// record. The conflict never reaches the caller.
func (s *AccountDirectoryService) FindOrCreate(
	ctx context.Context,
	name string,
	accountType ledger.AccountType,
	responsibleID *uuid.UUID,
) (*ledger.Account, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "account_directory", "find_or_create")
	defer span.End()

	telemetry.SetAttributes(span,
		"account_name", name,
		"account_type", string(accountType),
	)

	key := ledger.AccountKey{Type: accountType, ResponsibleID: responsibleID, Name: name}

	account, err := s.accounts.FindByKey(ctx, key)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	account, err = ledger.NewAccount(name, accountType, responsibleID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// Lost the creation race; the winner's record is the account.
			s.logger.Debug("account creation race recovered",
				zap.String("name", name),
				zap.String("type", string(accountType)),
			)
			winner, findErr := s.accounts.FindByKey(ctx, key)
			if findErr != nil {
				telemetry.RecordError(span, findErr)
				return nil, fmt.Errorf("failed to re-read account after creation conflict: %w", findErr)
			}
			return winner, nil
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("ledger account created",
		zap.String("account_id", account.ID.String()),
		zap.String("name", account.Name),
		zap.String("type", string(account.Type)),
	)

	return account, nil
}

// FindOrCreateReceivableAccount resolves the responsible party and returns the
// ASSET account tracking what that party owes the school, creating it on first
// use. Fails with NotFound when the responsible does not exist.
func (s *AccountDirectoryService) FindOrCreateReceivableAccount(
	ctx context.Context,
	responsibleID uuid.UUID,
) (*ledger.Account, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "account_directory", "find_or_create_receivable")
	defer span.End()

	telemetry.SetAttribute(span, "responsible_id", responsibleID.String())

	if responsibleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Responsible ID cannot be empty")
	}

	responsible, err := s.responsibles.FindByID(ctx, responsibleID)
	if err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Responsible party not found")
		}
		return nil, fmt.Errorf("failed to look up responsible: %w", err)
	}

	name := ledger.ReceivableAccountName(responsible.Name)
	rid := responsible.ID
	return s.FindOrCreate(ctx, name, ledger.AccountTypeAsset, &rid)
}
