package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/gateway"
	"github.com/RoyceAzure/lab/storefront/internal/infra/gateway/esewa"
	"github.com/RoyceAzure/lab/storefront/internal/infra/gateway/khalti"
	"github.com/RoyceAzure/lab/storefront/internal/infra/metrics"
	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultManualProvider  = constants.ProviderKhalti
	defaultManualReference = "TEST"
	purchaseOrderName      = "Jersey Empire Nepal Order"
	fallbackCustomerEmail  = "example@mail.com"
	fallbackCustomerPhone  = "9800000001"
)

type IKhaltiGateway interface {
	Initiate(ctx context.Context, req khalti.InitiateRequest) (*khalti.InitiateResponse, error)
	Lookup(ctx context.Context, pidx string) (*khalti.LookupResponse, error)
}

type IEsewaGateway interface {
	FormURL() string
	BuildForm(totalAmount, transactionUUID string) esewa.FormFields
	CheckStatus(ctx context.Context, totalAmount, transactionUUID string) (*esewa.StatusResponse, error)
}

// PaymentRedirects are the browser destinations after a gateway round trip.
// Clients learn the outcome by polling the order, never from the redirect itself.
type PaymentRedirects struct {
	Success string
	Failure string
}

type KhaltiSession struct {
	PaymentURL string `json:"payment_url"`
	Pidx       string `json:"pidx"`
}

type EsewaForm struct {
	FormAction string           `json:"form_action"`
	Fields     esewa.FormFields `json:"fields"`
}

type IPaymentService interface {
	/*
		Pay records a manual payment for the order, unverified. provider defaults to khalti, reference to TEST.

		Errors:
		  - apperr.NotFoundCode 404: order missing or owned by someone else
		  - apperr.ConflictCode 409: the payment is already verified
	*/
	Pay(ctx context.Context, userID, orderID uint, provider, reference string) (*model.Payment, error)
	/*
		MarkPaid force-verifies the order's payment and moves the order to PAID.

		Errors:
		  - apperr.NotFoundCode 404: order missing or owned by someone else
		  - apperr.BadRequestCode 400: no payment exists for the order
		  - apperr.ConflictCode 409: the order can no longer become PAID
	*/
	MarkPaid(ctx context.Context, userID, orderID uint) error
	/*
		InitiateKhalti opens a Khalti payment session for a PENDING order.
		websiteURL is the absolute root of this site as seen by the browser.

		Errors:
		  - apperr.NotFoundCode 404: order missing or owned by someone else
		  - apperr.ConflictCode 409: order is not PENDING
		  - apperr.BadRequestCode 400: khalti refused, ProviderResponse carries its body
		  - apperr.BadGatewayCode 502: khalti unreachable, retryable
	*/
	InitiateKhalti(ctx context.Context, userID, orderID uint, websiteURL string) (*KhaltiSession, error)
	/*
		KhaltiCallback verifies pidx through the lookup api and returns the redirect target.
		An incomplete status or an amount mismatch is not an error, the payment just stays unverified.

		Errors:
		  - apperr.BadRequestCode 400: empty pidx
		  - apperr.NotFoundCode 404: no khalti payment with that pidx
		  - apperr.BadGatewayCode 502: khalti unreachable, nothing was changed
	*/
	KhaltiCallback(ctx context.Context, pidx string) (string, error)
	// InitiateEsewa signs a fresh eSewa form for a PENDING order, same errors as InitiateKhalti minus the provider refusal.
	InitiateEsewa(ctx context.Context, userID, orderID uint) (*EsewaForm, error)
	/*
		EsewaVerify checks the transaction through the status api and returns the redirect target.
		Only a COMPLETE status verifies the payment.

		Errors:
		  - apperr.NotFoundCode 404: no esewa payment with that transaction_uuid
		  - apperr.BadGatewayCode 502: esewa unreachable, nothing was changed
	*/
	EsewaVerify(ctx context.Context, transactionUUID, totalAmount string) (string, error)
	// EsewaFailure logs what eSewa sent back and returns the redirect target.
	EsewaFailure(ctx context.Context, params map[string]string) string
}

type PaymentService struct {
	store     db.IStore
	khalti    IKhaltiGateway
	esewa     IEsewaGateway
	khaltiCf  KhaltiSettings
	redirects PaymentRedirects
	publisher producer.IEventPublisher
	metrics   metrics.IRecorder
}

// KhaltiSettings are the fixed parts of every initiate request.
type KhaltiSettings struct {
	ReturnURL  string
	WebsiteURL string
}

func NewPaymentService(
	store db.IStore,
	khaltiGateway IKhaltiGateway,
	esewaGateway IEsewaGateway,
	khaltiCf KhaltiSettings,
	redirects PaymentRedirects,
	publisher producer.IEventPublisher,
	recorder metrics.IRecorder,
) *PaymentService {
	mustNotNil(store, "payment service initialization failed: store cannot be nil")
	mustNotNil(khaltiGateway, "payment service initialization failed: khalti gateway cannot be nil")
	mustNotNil(esewaGateway, "payment service initialization failed: esewa gateway cannot be nil")
	if isNil(publisher) {
		publisher = producer.NoopPublisher{}
	}
	return &PaymentService{
		store:     store,
		khalti:    khaltiGateway,
		esewa:     esewaGateway,
		khaltiCf:  khaltiCf,
		redirects: redirects,
		publisher: publisher,
		metrics:   orNopRecorder(recorder),
	}
}

func (s *PaymentService) Pay(ctx context.Context, userID, orderID uint, provider, reference string) (*model.Payment, error) {
	order, err := s.store.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if provider = strings.TrimSpace(provider); provider == "" {
		provider = defaultManualProvider
	}
	if reference = strings.TrimSpace(reference); reference == "" {
		reference = defaultManualReference
	}

	existing, err := s.store.GetPaymentByOrder(ctx, order.ID)
	switch {
	case err == nil && existing.IsVerified:
		return nil, apperr.New(apperr.ConflictCode, "payment already verified")
	case err != nil && !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	}

	payment := &model.Payment{
		OrderID:   order.ID,
		Provider:  provider,
		Reference: reference,
		Amount:    order.Total,
	}
	if err := s.store.UpsertPayment(ctx, payment, "provider", "reference", "amount"); err != nil {
		return nil, err
	}
	return s.store.GetPaymentByOrder(ctx, order.ID)
}

func (s *PaymentService) MarkPaid(ctx context.Context, userID, orderID uint) error {
	order, err := s.store.GetOrder(ctx, userID, orderID)
	if err != nil {
		return err
	}
	payment, err := s.store.GetPaymentByOrder(ctx, order.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.New(apperr.BadRequestCode, "No payment created")
		}
		return err
	}
	if order.Status != model.OrderStatusPaid && !order.Status.CanTransitionTo(model.OrderStatusPaid) {
		return apperr.New(apperr.ConflictCode, "order is %s", order.Status)
	}

	wasVerified := false
	err = s.store.ExecTx(ctx, func(tx db.IStore) error {
		locked, err := tx.GetPaymentForUpdate(ctx, payment.ID)
		if err != nil {
			return err
		}
		wasVerified = locked.IsVerified
		if !wasVerified {
			locked.IsVerified = true
			if err := tx.UpdatePayment(ctx, locked, "is_verified"); err != nil {
				return err
			}
		}
		payment = locked
		if order.Status == model.OrderStatusPaid {
			return nil
		}
		return tx.UpdateOrderStatus(ctx, order.ID, model.OrderStatusPaid)
	})
	if err != nil {
		return err
	}
	if !wasVerified {
		s.publishVerified(ctx, payment)
	}
	return nil
}

// payableOrder loads an order the user may start a gateway payment for.
func (s *PaymentService) payableOrder(ctx context.Context, userID, orderID uint) (*model.Order, error) {
	order, err := s.store.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPending {
		return nil, apperr.New(apperr.ConflictCode, "order is %s", order.Status)
	}
	return order, nil
}

func gatewayErr(provider string, err error) error {
	var perr *gateway.ProviderError
	switch {
	case errors.As(err, &perr):
		return &apperr.Error{
			Code:             apperr.BadRequestCode,
			Message:          provider + " initiate failed",
			ProviderResponse: perr.Body,
			Err:              err,
		}
	case errors.Is(err, gateway.ErrUnavailable):
		return apperr.Wrap(apperr.BadGatewayCode, err, "%s is unavailable, please retry", provider)
	default:
		return err
	}
}

func (s *PaymentService) InitiateKhalti(ctx context.Context, userID, orderID uint, websiteURL string) (session *KhaltiSession, err error) {
	defer observe(s.metrics, "khalti_initiate", time.Now(), &err)

	order, err := s.payableOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if websiteURL == "" {
		websiteURL = s.khaltiCf.WebsiteURL
	}
	email := user.Email
	if email == "" {
		email = fallbackCustomerEmail
	}

	start := time.Now()
	resp, err := s.khalti.Initiate(ctx, khalti.InitiateRequest{
		ReturnURL:         s.khaltiCf.ReturnURL,
		WebsiteURL:        websiteURL,
		Amount:            model.ToPaisa(order.Total),
		PurchaseOrderID:   strconv.FormatUint(uint64(order.ID), 10),
		PurchaseOrderName: purchaseOrderName,
		CustomerInfo: khalti.CustomerInfo{
			Name:  user.Username,
			Email: email,
			Phone: fallbackCustomerPhone,
		},
	})
	s.metrics.ObserveExternal(constants.ProviderKhalti, "initiate", start, err)
	if err != nil {
		return nil, gatewayErr("Khalti", err)
	}

	payment := &model.Payment{
		OrderID:  order.ID,
		Provider: constants.ProviderKhalti,
		Amount:   order.Total,
		Pidx:     resp.Pidx,
	}
	err = payment.SetMeta(model.PaymentMeta{
		Provider: constants.ProviderKhalti,
		Khalti: &model.KhaltiMeta{
			Pidx:       resp.Pidx,
			PaymentURL: resp.PaymentURL,
			ExpiresAt:  resp.ExpiresAt,
		},
		Raw: resp.Raw,
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.UpsertPayment(ctx, payment, "provider", "amount", "pidx", "meta"); err != nil {
		return nil, err
	}
	return &KhaltiSession{PaymentURL: resp.PaymentURL, Pidx: resp.Pidx}, nil
}

func (s *PaymentService) KhaltiCallback(ctx context.Context, pidx string) (redirect string, err error) {
	defer observe(s.metrics, "khalti_verify", time.Now(), &err)

	if pidx = strings.TrimSpace(pidx); pidx == "" {
		return "", apperr.New(apperr.BadRequestCode, "Missing pidx")
	}
	payment, err := s.store.GetPaymentByPidx(ctx, pidx, constants.ProviderKhalti)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", apperr.Wrap(apperr.NotFoundCode, err, "Payment not found")
		}
		return "", err
	}

	start := time.Now()
	resp, err := s.khalti.Lookup(ctx, pidx)
	s.metrics.ObserveExternal(constants.ProviderKhalti, "lookup", start, err)

	meta := model.PaymentMeta{Provider: constants.ProviderKhalti, Khalti: &model.KhaltiMeta{Pidx: pidx}}
	var perr *gateway.ProviderError
	switch {
	case err == nil:
		meta.Khalti.Status = resp.Status
		meta.Khalti.TransactionID = resp.Reference()
		meta.Khalti.TotalAmount = resp.TotalAmount.IntPart()
		meta.Raw = resp.Raw
	case errors.As(err, &perr):
		// an unknown or expired pidx, keep khalti's answer and stay unverified
		meta.Raw = perr.Body
	default:
		return "", gatewayErr("Khalti", err)
	}

	verified, reference := false, ""
	if resp != nil {
		verified = resp.IsCompleted() &&
			resp.TotalAmount.Equal(resp.TotalAmount.Truncate(0)) &&
			resp.TotalAmount.IntPart() == model.ToPaisa(payment.Amount)
		reference = resp.Reference()
	}

	if err := s.applyVerification(ctx, payment, meta, verified, reference); err != nil {
		return "", err
	}
	return s.redirectFor(payment.IsVerified), nil
}

func (s *PaymentService) InitiateEsewa(ctx context.Context, userID, orderID uint) (form *EsewaForm, err error) {
	defer observe(s.metrics, "esewa_initiate", time.Now(), &err)

	order, err := s.payableOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	transactionUUID := strings.ReplaceAll(uuid.NewString(), "-", "")
	fields := s.esewa.BuildForm(model.AmountString(order.Total), transactionUUID)

	payment := &model.Payment{
		OrderID:         order.ID,
		Provider:        constants.ProviderEsewa,
		Amount:          order.Total,
		TransactionUUID: transactionUUID,
	}
	err = payment.SetMeta(model.PaymentMeta{
		Provider: constants.ProviderEsewa,
		Esewa:    &model.EsewaMeta{Signature: fields.Signature},
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.UpsertPayment(ctx, payment, "provider", "amount", "transaction_uuid", "meta"); err != nil {
		return nil, err
	}
	return &EsewaForm{FormAction: s.esewa.FormURL(), Fields: fields}, nil
}

func (s *PaymentService) EsewaVerify(ctx context.Context, transactionUUID, totalAmount string) (redirect string, err error) {
	defer observe(s.metrics, "esewa_verify", time.Now(), &err)

	transactionUUID = strings.TrimSpace(transactionUUID)
	if transactionUUID == "" {
		return "", apperr.New(apperr.NotFoundCode, "Payment not found")
	}
	payment, err := s.store.GetPaymentByTransactionUUID(ctx, transactionUUID, constants.ProviderEsewa)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", apperr.Wrap(apperr.NotFoundCode, err, "Payment not found")
		}
		return "", err
	}

	// the status query always uses the amount that was signed, not what the browser echoed back
	signedAmount := model.AmountString(payment.Amount)
	if totalAmount != "" && totalAmount != signedAmount {
		zerolog.Ctx(ctx).Warn().
			Str("transaction_uuid", transactionUUID).
			Str("echoed_total", totalAmount).
			Str("signed_total", signedAmount).
			Msg("esewa callback amount differs from signed amount")
	}

	start := time.Now()
	resp, err := s.esewa.CheckStatus(ctx, signedAmount, transactionUUID)
	s.metrics.ObserveExternal(constants.ProviderEsewa, "status", start, err)
	if err != nil {
		return "", gatewayErr("eSewa", err)
	}

	meta := model.PaymentMeta{
		Provider: constants.ProviderEsewa,
		Esewa: &model.EsewaMeta{
			Status:         resp.Status,
			RefID:          resp.Reference(),
			StatusResponse: resp.Raw,
		},
	}
	if old, derr := payment.DecodeMeta(); derr == nil && old.Esewa != nil {
		meta.Esewa.Signature = old.Esewa.Signature
	}

	if err := s.applyVerification(ctx, payment, meta, resp.IsComplete(), resp.Reference()); err != nil {
		return "", err
	}
	return s.redirectFor(payment.IsVerified), nil
}

func (s *PaymentService) EsewaFailure(ctx context.Context, params map[string]string) string {
	dict := zerolog.Dict()
	for k, v := range params {
		dict.Str(k, v)
	}
	zerolog.Ctx(ctx).Info().Dict("params", dict).Msg("esewa payment failed or cancelled")
	return s.redirectFor(false)
}

/*
applyVerification stores the provider answer and, when verified, marks the payment and its order PAID
in one transaction. The payment row is re-read under a row lock, so an answer that arrives after another
callback verified the payment is dropped and a PAID order is left as is.
On return payment holds the row as committed.
*/
func (s *PaymentService) applyVerification(ctx context.Context, payment *model.Payment, meta model.PaymentMeta, verified bool, reference string) error {
	logger := zerolog.Ctx(ctx)
	var (
		current     *model.Payment
		wasVerified bool
	)
	err := s.store.ExecTx(ctx, func(tx db.IStore) error {
		locked, err := tx.GetPaymentForUpdate(ctx, payment.ID)
		if err != nil {
			return err
		}
		current = locked
		wasVerified = locked.IsVerified
		if wasVerified {
			return nil
		}

		if err := locked.SetMeta(meta); err != nil {
			return err
		}
		if !verified {
			return tx.UpdatePayment(ctx, locked, "meta")
		}

		locked.IsVerified = true
		locked.Reference = reference
		if err := tx.UpdatePayment(ctx, locked, "is_verified", "reference", "meta"); err != nil {
			return err
		}

		order, err := tx.GetOrderByID(ctx, locked.OrderID)
		if err != nil {
			return err
		}
		switch {
		case order.Status == model.OrderStatusPaid:
			return nil
		case order.Status.CanTransitionTo(model.OrderStatusPaid):
			return tx.UpdateOrderStatus(ctx, order.ID, model.OrderStatusPaid)
		default:
			logger.Warn().Uint("order_id", order.ID).Str("status", string(order.Status)).Msg("payment verified for an order that cannot become PAID")
			return nil
		}
	})
	if err != nil {
		return err
	}
	*payment = *current

	switch {
	case wasVerified:
		logger.Info().Uint("order_id", payment.OrderID).Str("provider", payment.Provider).Bool("answer_verified", verified).Msg("payment already verified, answer dropped")
	case verified:
		logger.Info().Uint("order_id", payment.OrderID).Str("provider", payment.Provider).Str("reference", reference).Msg("payment verified")
		s.publishVerified(ctx, payment)
	default:
		logger.Info().Uint("order_id", payment.OrderID).Str("provider", payment.Provider).Msg("payment not verified")
	}
	return nil
}

func (s *PaymentService) publishVerified(ctx context.Context, payment *model.Payment) {
	event := producer.NewPaymentVerified(payment.OrderID, producer.PaymentVerified{
		Provider:  payment.Provider,
		Reference: payment.Reference,
		Amount:    payment.Amount,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Uint("order_id", payment.OrderID).Msg("publish payment.verified failed")
	}
}

func (s *PaymentService) redirectFor(verified bool) string {
	if verified {
		return s.redirects.Success
	}
	return s.redirects.Failure
}

var _ IPaymentService = (*PaymentService)(nil)
