package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sajitha00/farm-to-keells-api/internal/config"
	"github.com/sajitha00/farm-to-keells-api/internal/database"
	"github.com/sajitha00/farm-to-keells-api/internal/logging"
	"github.com/sajitha00/farm-to-keells-api/internal/models"
	"github.com/sajitha00/farm-to-keells-api/internal/paypal"
)

// Stage identifies where in the disbursement workflow a failure occurred.
type Stage string

const (
	StageValidate     Stage = "validate"
	StageLookup       Stage = "lookup"
	StagePayout       Stage = "payout"
	StageNotification Stage = "notification"
)

// ErrorCode classifies a workflow failure.
type ErrorCode string

const (
	CodeMissingFields      ErrorCode = "missing_fields"
	CodeFarmerNotFound     ErrorCode = "farmer_not_found"
	CodeLookupFailed       ErrorCode = "lookup_failed"
	CodePayoutRejected     ErrorCode = "payout_rejected"
	CodePayoutFailed       ErrorCode = "payout_failed"
	CodeNotificationFailed ErrorCode = "notification_failed"
)

// StageError is a terminal workflow failure. A notification-stage error
// is a partial success: the payout was already accepted and cannot be
// rolled back, so BatchID is carried for manual reconciliation.
type StageError struct {
	Stage   Stage
	Code    ErrorCode
	Details string
	BatchID string
	Err     error
}

func (e *StageError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("payment %s stage failed (%s): %s", e.Stage, e.Code, e.Details)
	}
	return fmt.Sprintf("payment %s stage failed (%s)", e.Stage, e.Code)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// PartialSuccess reports whether money moved despite the failure.
func (e *StageError) PartialSuccess() bool {
	return e.Code == CodeNotificationFailed
}

// FarmerDirectory resolves a recipient identifier to an internal id.
type FarmerDirectory interface {
	FindIDByEmail(ctx context.Context, email string) (string, error)
}

// PayoutGateway accepts payout instructions for asynchronous settlement.
type PayoutGateway interface {
	SubmitPayout(ctx context.Context, instruction models.PayoutInstruction) (*paypal.PayoutResult, error)
}

// NotificationStore persists disbursement notifications.
type NotificationStore interface {
	Insert(ctx context.Context, record models.NotificationRecord) error
}

// PaymentResult is the terminal success state of one disbursement.
type PaymentResult struct {
	FarmerID string
	BatchID  string
	Message  string
}

// PaymentService orchestrates one disbursement per invocation:
// Validate -> LookupRecipient -> ExecutePayout -> RecordNotification.
// It holds no request state, so concurrent invocations are independent.
type PaymentService struct {
	directory FarmerDirectory
	gateway   PayoutGateway
	store     NotificationStore
	cfg       config.PaymentConfig
	logger    *logging.StandardLogger

	now        func() time.Time
	newBatchID func() string
}

// NewPaymentService creates the disbursement workflow service.
func NewPaymentService(directory FarmerDirectory, gateway PayoutGateway, store NotificationStore, cfg config.PaymentConfig, logger *logging.StandardLogger) *PaymentService {
	return &PaymentService{
		directory: directory,
		gateway:   gateway,
		store:     store,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		newBatchID: func() string {
			return "batch_" + uuid.NewString()
		},
	}
}

// SendPayment runs the disbursement workflow. The returned error, when
// non-nil, is always a *StageError; callers must check PartialSuccess to
// distinguish "nothing happened" from "money moved but the notification
// write failed". There is no idempotency: re-submitting after a failure
// executes a second payout, and identical batch ids are still submitted
// to the gateway independently.
func (s *PaymentService) SendPayment(ctx context.Context, req models.PaymentRequest) (*PaymentResult, error) {
	log := s.logger.WithOperation("send_payment")

	// Validate
	if req.Email == "" || req.Amount.IsZero() {
		return nil, &StageError{Stage: StageValidate, Code: CodeMissingFields}
	}

	// LookupRecipient
	var farmerID string
	if s.cfg.WithDirectoryLookup {
		id, err := s.lookupFarmer(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		farmerID = id
		log.Debug("Resolved farmer", "farmer_id", farmerID)
	}

	// ExecutePayout
	batchID := s.newBatchID()
	instruction := models.PayoutInstruction{
		BatchID:  batchID,
		Receiver: req.Email,
		Amount:   req.Amount,
		Currency: s.cfg.Currency,
	}
	if err := s.executePayout(ctx, instruction); err != nil {
		return nil, err
	}
	log.Info("Payout accepted", "batch_id", batchID, "amount", req.Amount.String())

	result := &PaymentResult{
		FarmerID: farmerID,
		BatchID:  batchID,
		Message:  s.notificationMessage(req.Amount),
	}

	// RecordNotification. A failure here is terminal but the payout is
	// already accepted; there is no compensating transaction.
	if s.cfg.WithNotification {
		if err := s.recordNotification(ctx, farmerID, result.Message); err != nil {
			stageErr := &StageError{
				Stage:   StageNotification,
				Code:    CodeNotificationFailed,
				Details: collaboratorDetails(err),
				BatchID: batchID,
				Err:     err,
			}
			s.logger.LogBusinessEvent("payment_partial_success", map[string]interface{}{
				"batch_id":  batchID,
				"farmer_id": farmerID,
				"error":     stageErr.Details,
			})
			return nil, stageErr
		}
	}

	return result, nil
}

func (s *PaymentService) lookupFarmer(ctx context.Context, email string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeoutDuration())
	defer cancel()

	id, err := s.directory.FindIDByEmail(callCtx, email)
	if err != nil {
		if errors.Is(err, database.ErrFarmerNotFound) {
			return "", &StageError{Stage: StageLookup, Code: CodeFarmerNotFound, Err: err}
		}
		return "", &StageError{
			Stage:   StageLookup,
			Code:    CodeLookupFailed,
			Details: collaboratorDetails(err),
			Err:     err,
		}
	}
	return id, nil
}

func (s *PaymentService) executePayout(ctx context.Context, instruction models.PayoutInstruction) error {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeoutDuration())
	defer cancel()

	_, err := s.gateway.SubmitPayout(callCtx, instruction)
	if err == nil {
		return nil
	}

	var rejected *paypal.RejectedError
	if errors.As(err, &rejected) {
		return &StageError{
			Stage:   StagePayout,
			Code:    CodePayoutRejected,
			Details: rejected.Details(),
			Err:     err,
		}
	}
	return &StageError{
		Stage:   StagePayout,
		Code:    CodePayoutFailed,
		Details: collaboratorDetails(err),
		Err:     err,
	}
}

func (s *PaymentService) recordNotification(ctx context.Context, farmerID, message string) error {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeoutDuration())
	defer cancel()

	return s.store.Insert(callCtx, models.NotificationRecord{
		FarmerID:  farmerID,
		Message:   message,
		CreatedAt: s.now(),
		IsRead:    false,
	})
}

// notificationMessage composes the farmer-facing text with the LKR
// equivalent at the configured fixed rate, truncated to whole rupees.
func (s *PaymentService) notificationMessage(amount decimal.Decimal) string {
	lkr := amount.Mul(decimal.NewFromFloat(s.cfg.ExchangeRateLKR))
	return fmt.Sprintf("Payment of $%s (approx LKR %d) USD received from Farm to Keels!", amount.String(), lkr.IntPart())
}

// collaboratorDetails normalizes a collaborator failure into caller
// facing details, mapping deadline expiry to "timeout".
func collaboratorDetails(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return err.Error()
}
