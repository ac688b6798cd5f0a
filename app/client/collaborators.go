package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/vibast-solutions/go-donation-client/app/types"
)

func (c *Client) GetKYCStatus(ctx context.Context) (*types.KYCStatusPayload, error) {
	var payload types.KYCStatusPayload
	if err := c.doJSON(ctx, http.MethodGet, "/memberships/kyc/me", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) AdminApproveKYC(ctx context.Context, kycID string, approved bool, remarks string) (*types.KYCStatusPayload, error) {
	kycID = strings.TrimSpace(kycID)
	if kycID == "" {
		return nil, fmt.Errorf("%w: kyc id is required", ErrValidation)
	}

	var payload types.KYCStatusPayload
	path := "/memberships/admin/kyc/" + url.PathEscape(kycID) + "/approve"
	if err := c.doJSON(ctx, http.MethodPost, path, &types.ApproveKYCRequest{Approved: approved, Remarks: strings.TrimSpace(remarks)}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) GetCaseTimeline(ctx context.Context, caseID string) ([]types.CaseTimelineEventPayload, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return nil, fmt.Errorf("%w: case id is required", ErrValidation)
	}

	var events []types.CaseTimelineEventPayload
	if err := c.doJSON(ctx, http.MethodGet, "/hrci/cases/"+url.PathEscape(caseID)+"/timeline", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) UploadCaseAttachment(ctx context.Context, caseID, fileName string, content io.Reader) (*types.CaseAttachmentPayload, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" || strings.TrimSpace(fileName) == "" {
		return nil, fmt.Errorf("%w: case id and file name are required", ErrValidation)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	raw, err := c.do(ctx, http.MethodPost, "/hrci/cases/"+url.PathEscape(caseID)+"/attachments", &body, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var payload types.CaseAttachmentPayload
	if err := decodeData(raw, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
