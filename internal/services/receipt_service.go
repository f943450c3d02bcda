package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dinepos/internal/models"

	"github.com/google/uuid"
)

// ErrReceiptsDisabled is returned when no object store is configured.
var ErrReceiptsDisabled = errors.New("receipt archive is not configured")

const receiptURLExpiry = 15 * time.Minute

// ReceiptService archives bill JSON in object storage.
type ReceiptService interface {
	Archive(ctx context.Context, bill *models.Bill) error
	URL(ctx context.Context, bill *models.Bill) (string, error)
}

type receiptService struct {
	storage MinioService
	bucket  string
}

// NewReceiptService accepts a nil storage, in which case archiving is skipped.
func NewReceiptService(storage MinioService, bucket string) ReceiptService {
	return &receiptService{storage: storage, bucket: bucket}
}

func ReceiptObjectName(outletID, orderID uuid.UUID) string {
	return fmt.Sprintf("receipts/%s/%s.json", outletID, orderID)
}

func (s *receiptService) Archive(ctx context.Context, bill *models.Bill) error {
	if s.storage == nil {
		return nil
	}
	body, err := json.MarshalIndent(bill, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal receipt: %w", err)
	}
	name := ReceiptObjectName(bill.OutletID, bill.OrderID)
	if err := s.storage.UploadObject(ctx, s.bucket, name, bytes.NewReader(body), int64(len(body)), "application/json"); err != nil {
		return fmt.Errorf("failed to upload receipt: %w", err)
	}
	return nil
}

// URL presigns the archived receipt, archiving it first if an earlier upload was lost.
func (s *receiptService) URL(ctx context.Context, bill *models.Bill) (string, error) {
	if s.storage == nil {
		return "", ErrReceiptsDisabled
	}
	name := ReceiptObjectName(bill.OutletID, bill.OrderID)
	exists, err := s.storage.ObjectExists(ctx, s.bucket, name)
	if err != nil {
		return "", err
	}
	if !exists {
		if err := s.Archive(ctx, bill); err != nil {
			return "", err
		}
	}
	return s.storage.GetPresignedURL(ctx, s.bucket, name, receiptURLExpiry)
}
