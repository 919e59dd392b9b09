package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	ledgerapp "github.com/schoolerp/backend/internal/application/ledger"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/schoolerp/backend/internal/domain/ledger"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/domain/shared/valueobject"
	"github.com/schoolerp/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Shared chart-of-accounts names used by the billing posting workflows
const (
	AccountNameCash           = "Caixa"
	AccountNameTuitionRevenue = "Receita de Mensalidades"
	AccountNamePenaltyRevenue = "Receita de Multas"
	AccountNameDiscountsGiven = "Descontos Concedidos"
)

// Clock supplies the current time for due-date comparisons
type Clock interface {
	Now() time.Time
}

// BillingMetricsRecorder receives billing activity counters. Implemented by
// telemetry.BillingMetrics; a nil recorder disables instrumentation.
type BillingMetricsRecorder interface {
	RecordInvoiceIssued(ctx context.Context, amount decimal.Decimal)
	RecordPayment(ctx context.Context, method string, amount decimal.Decimal)
	RecordOverdueMarked(ctx context.Context, count int64)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now
func SystemClock() Clock { return systemClock{} }

// InvoiceItemInput describes one line item when creating an invoice
type InvoiceItemInput struct {
	Description  string
	Amount       decimal.Decimal
	Type         billing.ItemType
	EnrollmentID *uuid.UUID
}

// CreateInvoiceRequest describes a new invoice for a responsible party
type CreateInvoiceRequest struct {
	ResponsibleID  uuid.UUID
	IssueDate      time.Time
	DueDate        time.Time
	ReferenceMonth string
	Items          []InvoiceItemInput
}

// InvoiceService drives the invoice lifecycle. Every mutation path recomputes
// the invoice amount before persisting, so the stored total always reflects
// the current items, discounts and payment state.
type InvoiceService struct {
	invoices  billing.InvoiceRepository
	payments  billing.PaymentRepository
	discounts billing.DiscountRepository
	directory *ledgerapp.AccountDirectoryService
	poster    *ledgerapp.LedgerPostingService
	clock     Clock
	penalty   decimal.Decimal
	metrics   BillingMetricsRecorder
	logger    *zap.Logger
}

// SetMetricsRecorder enables billing metrics emission. Optional; the service
// works without one.
func (s *InvoiceService) SetMetricsRecorder(recorder BillingMetricsRecorder) {
	s.metrics = recorder
}

// NewInvoiceService creates a new InvoiceService. latePenalty is the flat
// amount assessed on payments received after the due date.
func NewInvoiceService(
	invoices billing.InvoiceRepository,
	payments billing.PaymentRepository,
	discounts billing.DiscountRepository,
	directory *ledgerapp.AccountDirectoryService,
	poster *ledgerapp.LedgerPostingService,
	clock Clock,
	latePenalty decimal.Decimal,
	logger *zap.Logger,
) *InvoiceService {
	if clock == nil {
		clock = SystemClock()
	}
	return &InvoiceService{
		invoices:  invoices,
		payments:  payments,
		discounts: discounts,
		directory: directory,
		poster:    poster,
		clock:     clock,
		penalty:   latePenalty,
		logger:    logger,
	}
}

// CreateInvoice issues a new invoice with its initial line items
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*billing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create")
	defer span.End()

	telemetry.SetAttributes(span,
		"responsible_id", req.ResponsibleID.String(),
		"reference_month", req.ReferenceMonth,
	)

	invoice, err := billing.NewInvoice(req.ResponsibleID, req.IssueDate, req.DueDate, req.ReferenceMonth)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	for _, item := range req.Items {
		if _, err := invoice.AddItem(item.Description, item.Amount, item.Type, item.EnrollmentID); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if err := s.save(ctx, invoice); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("reference_month", invoice.ReferenceMonth),
		zap.String("amount", invoice.Amount.StringFixed(2)),
	)

	return invoice, nil
}

// ComputeInvoiceTotal recomputes and persists the invoice's total, returning
// the fresh value
func (s *InvoiceService) ComputeInvoiceTotal(ctx context.Context, invoiceID uuid.UUID) (valueobject.Money, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "compute_total")
	defer span.End()

	telemetry.SetAttribute(span, "invoice_id", invoiceID.String())

	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return valueobject.Money{}, err
	}

	if err := s.save(ctx, invoice); err != nil {
		telemetry.RecordError(span, err)
		return valueobject.Money{}, err
	}

	return invoice.GetAmountMoney(), nil
}

// AddItem appends a line item to an invoice and refreshes its total
func (s *InvoiceService) AddItem(ctx context.Context, invoiceID uuid.UUID, item InvoiceItemInput) (*billing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "add_item")
	defer span.End()

	telemetry.SetAttribute(span, "invoice_id", invoiceID.String())

	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if _, err := invoice.AddItem(item.Description, item.Amount, item.Type, item.EnrollmentID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.save(ctx, invoice); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return invoice, nil
}

// ApplyDiscount attaches a registered discount to an invoice and refreshes
// its total
func (s *InvoiceService) ApplyDiscount(ctx context.Context, invoiceID, discountID uuid.UUID) (*billing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "apply_discount")
	defer span.End()

	telemetry.SetAttributes(span,
		"invoice_id", invoiceID.String(),
		"discount_id", discountID.String(),
	)

	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	discount, err := s.discounts.FindByID(ctx, discountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if discount.IsExpiredAt(s.clock.Now()) {
		err := shared.NewDomainError("INVALID_STATE", "Discount validity has expired")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := invoice.ApplyDiscount(*discount); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.save(ctx, invoice); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return invoice, nil
}

// ChargeInvoice posts the invoice total to the ledger: debit the
// responsible's receivable account, credit tuition revenue.
func (s *InvoiceService) ChargeInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "charge")
	defer span.End()

	telemetry.SetAttribute(span, "invoice_id", invoiceID.String())

	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if !invoice.Amount.IsPositive() {
		err := shared.NewDomainError("INVALID_STATE", "Invoice total must be positive to charge")
		telemetry.RecordError(span, err)
		return err
	}

	receivable, err := s.directory.FindOrCreateReceivableAccount(ctx, invoice.ResponsibleID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	revenue, err := s.directory.FindOrCreate(ctx, AccountNameTuitionRevenue, ledger.AccountTypeRevenue, nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	invID := invoice.ID
	if err := s.poster.PostTransaction(ctx, ledgerapp.PostTransactionRequest{
		InvoiceID:       &invID,
		DebitAccountID:  receivable.ID,
		CreditAccountID: revenue.ID,
		Amount:          invoice.GetAmountMoney(),
		TransactionDate: invoice.IssueDate,
		Description:     fmt.Sprintf("Mensalidade %s", invoice.ReferenceMonth),
		Type:            ledger.EntryTypeTuitionFee,
	}); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordInvoiceIssued(ctx, invoice.Amount)
	}
	return nil
}

// RecordPayment registers the payment settling an invoice, assesses the late
// penalty when applicable, and posts the corresponding ledger transactions.
func (s *InvoiceService) RecordPayment(
	ctx context.Context,
	invoiceID uuid.UUID,
	amountPaid decimal.Decimal,
	paymentDate time.Time,
	method billing.PaymentMethod,
) (*billing.Payment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "record_payment")
	defer span.End()

	telemetry.SetAttributes(span,
		"invoice_id", invoiceID.String(),
		"amount_paid", amountPaid.String(),
		"method", string(method),
	)

	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	payment, err := billing.NewPayment(invoiceID, amountPaid, paymentDate, method)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// The aggregate validates the status transition before anything is
	// written; a rejected payment must leave no payment row behind.
	if err := invoice.RecordPayment(payment, s.penalty); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Invoice already has a payment")
		}
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	if err := s.save(ctx, invoice); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.postPaymentEntries(ctx, invoice, payment); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordPayment(ctx, string(payment.Method), payment.AmountPaid)
	}

	s.logger.Info("payment recorded",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("amount_paid", payment.AmountPaid.StringFixed(2)),
		zap.Bool("late", !invoice.Penalty.IsZero()),
	)

	return payment, nil
}

// postPaymentEntries writes the ledger side of a recorded payment: cash in
// against the receivable, plus the penalty charge when one was assessed.
func (s *InvoiceService) postPaymentEntries(ctx context.Context, invoice *billing.Invoice, payment *billing.Payment) error {
	receivable, err := s.directory.FindOrCreateReceivableAccount(ctx, invoice.ResponsibleID)
	if err != nil {
		return err
	}
	cash, err := s.directory.FindOrCreate(ctx, AccountNameCash, ledger.AccountTypeAsset, nil)
	if err != nil {
		return err
	}

	invID := invoice.ID
	payID := payment.ID

	if !invoice.Penalty.IsZero() {
		penaltyRevenue, err := s.directory.FindOrCreate(ctx, AccountNamePenaltyRevenue, ledger.AccountTypeRevenue, nil)
		if err != nil {
			return err
		}
		err = s.poster.PostTransaction(ctx, ledgerapp.PostTransactionRequest{
			InvoiceID:       &invID,
			PaymentID:       &payID,
			DebitAccountID:  receivable.ID,
			CreditAccountID: penaltyRevenue.ID,
			Amount:          valueobject.NewMoneyBRL(invoice.Penalty),
			TransactionDate: payment.PaymentDate,
			Description:     fmt.Sprintf("Multa por atraso %s", invoice.ReferenceMonth),
			Type:            ledger.EntryTypePenaltyAssessed,
		})
		if err != nil {
			return err
		}
	}

	return s.poster.PostTransaction(ctx, ledgerapp.PostTransactionRequest{
		InvoiceID:       &invID,
		PaymentID:       &payID,
		DebitAccountID:  cash.ID,
		CreditAccountID: receivable.ID,
		Amount:          payment.GetAmountPaidMoney(),
		TransactionDate: payment.PaymentDate,
		Description:     fmt.Sprintf("Pagamento mensalidade %s", invoice.ReferenceMonth),
		Type:            ledger.EntryTypePaymentReceived,
	})
}

// GrantAdHocDiscount posts a discount directly against the invoice's
// receivable account, outside the invoice's itemized total.
func (s *InvoiceService) GrantAdHocDiscount(ctx context.Context, invoiceID uuid.UUID, amount decimal.Decimal, reason string) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "grant_adhoc_discount")
	defer span.End()

	telemetry.SetAttributes(span,
		"invoice_id", invoiceID.String(),
		"amount", amount.String(),
	)

	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	receivable, err := s.directory.FindOrCreateReceivableAccount(ctx, invoice.ResponsibleID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	discountsGiven, err := s.directory.FindOrCreate(ctx, AccountNameDiscountsGiven, ledger.AccountTypeExpense, nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	invID := invoice.ID
	return s.poster.PostTransaction(ctx, ledgerapp.PostTransactionRequest{
		InvoiceID:       &invID,
		DebitAccountID:  discountsGiven.ID,
		CreditAccountID: receivable.ID,
		Amount:          valueobject.NewMoneyBRL(amount),
		TransactionDate: s.clock.Now(),
		Description:     reason,
		Type:            ledger.EntryTypeDiscountApplied,
	})
}

// MarkOverdueInvoices sweeps pending invoices past their due date into the
// OVERDUE status. Invoked on demand by the calling workflow; the core does
// not schedule anything itself.
func (s *InvoiceService) MarkOverdueInvoices(ctx context.Context) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "mark_overdue")
	defer span.End()

	now := s.clock.Now()
	pastDue, err := s.invoices.FindPendingPastDue(ctx, now)
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, fmt.Errorf("failed to list past-due invoices: %w", err)
	}

	marked := 0
	for idx := range pastDue {
		invoice := &pastDue[idx]
		if err := invoice.MarkOverdue(now); err != nil {
			continue
		}
		if err := s.save(ctx, invoice); err != nil {
			telemetry.RecordError(span, err)
			return marked, err
		}
		marked++
	}

	if s.metrics != nil && marked > 0 {
		s.metrics.RecordOverdueMarked(ctx, int64(marked))
	}

	telemetry.SetAttribute(span, "marked", marked)
	return marked, nil
}

// CancelInvoice voids an unpaid invoice
func (s *InvoiceService) CancelInvoice(ctx context.Context, invoiceID uuid.UUID, reason string) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "cancel")
	defer span.End()

	telemetry.SetAttribute(span, "invoice_id", invoiceID.String())

	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if err := invoice.Cancel(reason); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	return s.save(ctx, invoice)
}

// save is the single persistence path for invoices. The amount is always
// recomputed immediately before the write.
func (s *InvoiceService) save(ctx context.Context, invoice *billing.Invoice) error {
	invoice.RecalculateAmount()
	if err := s.invoices.Save(ctx, invoice); err != nil {
		return fmt.Errorf("failed to save invoice: %w", err)
	}
	return nil
}
