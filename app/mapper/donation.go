package mapper

import (
	"strings"

	"github.com/vibast-solutions/go-donation-client/app/entity"
	"github.com/vibast-solutions/go-donation-client/app/types"
)

// IntentToCreateOrderRequest builds the order payload. Anonymous intents never
// carry donor identity.
func IntentToCreateOrderRequest(intent *entity.DonationIntent) *types.CreateOrderRequest {
	if intent == nil {
		return nil
	}

	req := &types.CreateOrderRequest{
		Amount:      intent.Amount,
		Currency:    strings.ToUpper(strings.TrimSpace(intent.Currency)),
		EventID:     derefString(intent.EventID),
		IsAnonymous: intent.IsAnonymous,
		ShareCode:   derefString(intent.ShareCode),
	}
	if !intent.IsAnonymous {
		req.DonorName = intent.DonorName
		req.DonorMobile = intent.DonorMobile
		req.DonorEmail = intent.DonorEmail
		req.DonorAddress = intent.DonorAddress
		req.DonorPAN = intent.DonorPAN
	}
	return req
}

func PaymentOrderFromPayload(payload *types.PaymentOrderPayload) *entity.PaymentOrder {
	if payload == nil {
		return nil
	}
	return &entity.PaymentOrder{
		OrderID:         strings.TrimSpace(payload.OrderID),
		ProviderOrderID: strings.TrimSpace(payload.ProviderOrderID),
		ProviderKeyID:   strings.TrimSpace(payload.ProviderKeyID),
		Amount:          payload.Amount,
		Currency:        strings.ToUpper(strings.TrimSpace(payload.Currency)),
		Provider:        strings.ToLower(strings.TrimSpace(payload.Provider)),
	}
}

func ConfirmationToRequest(record *entity.ConfirmationRecord) *types.ConfirmRequest {
	if record == nil {
		return nil
	}
	return &types.ConfirmRequest{
		OrderID:           record.OrderID,
		Status:            string(record.Status),
		Provider:          record.Provider,
		ProviderRef:       record.ProviderRef,
		ProviderOrderID:   record.ProviderOrderID,
		ProviderPaymentID: derefString(record.ProviderPaymentID),
		Signature:         derefString(record.Signature),
		Reason:            derefString(record.Reason),
	}
}

func ReceiptFromPayload(payload *types.ReceiptPayload) *entity.Receipt {
	if payload == nil {
		return nil
	}
	receipt := &entity.Receipt{
		HTMLURL: strings.TrimSpace(payload.HTMLURL),
		PDFURL:  strings.TrimSpace(payload.PDFURL),
	}
	if !receipt.Available() {
		return nil
	}
	return receipt
}

func OrderStatusFromPayload(payload *types.OrderStatusPayload) *entity.OrderStatus {
	if payload == nil {
		return nil
	}
	return &entity.OrderStatus{
		Status: strings.ToUpper(strings.TrimSpace(payload.Status)),
		Receipt: ReceiptFromPayload(&types.ReceiptPayload{
			HTMLURL: payload.ReceiptHTMLURL,
			PDFURL:  payload.ReceiptPDFURL,
		}),
	}
}

func CheckoutResultFromRequest(req *types.CheckoutResultRequest) *entity.CheckoutResult {
	if req == nil {
		return entity.Failed("empty checkout response")
	}
	if req.Error == nil {
		return entity.Completed(req.ProviderPaymentID, req.ProviderOrderID, req.Signature)
	}

	reason := req.Error.Description
	if reason == "" {
		reason = req.Error.Reason
	}
	if IsCancellation(req.Error.Code, reason) {
		result := entity.Cancelled(reason)
		result.Code = req.Error.Code
		return result
	}
	result := entity.Failed(reason)
	result.Code = req.Error.Code
	return result
}

// IsCancellation recognises the provider's cancellation sentinel: error code 0
// or a description mentioning "cancel".
func IsCancellation(code *int, description string) bool {
	if code != nil && *code == 0 {
		return true
	}
	return strings.Contains(strings.ToLower(description), "cancel")
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
