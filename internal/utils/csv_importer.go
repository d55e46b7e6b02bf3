package utils

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ArowuTest/giveaway-draw-backend/internal/apperror"
	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
	"github.com/ArowuTest/giveaway-draw-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// ImportResult summarises a purchase import run
type ImportResult struct {
	TotalRows        int      `json:"totalRows"`
	UsersCreated     int      `json:"usersCreated"`
	PurchasesCreated int      `json:"purchasesCreated"`
	Errors           []string `json:"errors"`
	DryRun           bool     `json:"dryRun"`
}

// PurchaseImporter loads purchase ledger rows from CSV, creating members on first sight.
// With DryRun set rows are validated and counted but nothing is written.
type PurchaseImporter struct {
	DryRun bool

	userRepo     repositories.UserRepository
	purchaseRepo repositories.PurchaseRepository
	now          func() time.Time
}

// NewPurchaseImporter creates a new PurchaseImporter
func NewPurchaseImporter(userRepo repositories.UserRepository, purchaseRepo repositories.PurchaseRepository) *PurchaseImporter {
	return &PurchaseImporter{
		userRepo:     userRepo,
		purchaseRepo: purchaseRepo,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

type purchaseColumns struct {
	phone, name, product, amount, date, payment, approval, ref int
}

// ImportPurchases reads a CSV with a header row. Phone, Product ID and Amount are
// required columns; rows that fail are reported in the result and skipped.
func (i *PurchaseImporter) ImportPurchases(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := purchaseColumns{
		phone:    findColumnIndex(header, []string{"Phone", "Phone Number", "Mobile", "MSISDN"}),
		name:     findColumnIndex(header, []string{"Name", "Customer Name"}),
		product:  findColumnIndex(header, []string{"Product ID", "ProductId", "Product"}),
		amount:   findColumnIndex(header, []string{"Amount", "Purchase Amount"}),
		date:     findColumnIndex(header, []string{"Date", "Purchase Date", "Created At"}),
		payment:  findColumnIndex(header, []string{"Payment Status", "User Payment"}),
		approval: findColumnIndex(header, []string{"Approval Status", "Payment Approval"}),
		ref:      findColumnIndex(header, []string{"Transaction Ref", "Reference"}),
	}
	if cols.phone == -1 || cols.product == -1 || cols.amount == -1 {
		return nil, apperror.Validation("import purchases", "phone, product id and amount columns are required")
	}

	result := &ImportResult{Errors: []string{}, DryRun: i.DryRun}
	users := make(map[string]primitive.ObjectID)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		result.TotalRows++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", result.TotalRows, err))
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		purchase, phone, name, err := i.parseRow(row, cols)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", result.TotalRows, err))
			continue
		}

		userID, ok := users[phone]
		if !ok {
			var created bool
			userID, created, err = i.resolveUser(ctx, phone, name)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: failed to resolve user: %v", result.TotalRows, err))
				continue
			}
			if created {
				result.UsersCreated++
			}
			users[phone] = userID
		}

		purchase.UserID = userID
		if i.DryRun {
			result.PurchasesCreated++
			continue
		}
		if err := i.purchaseRepo.Create(ctx, purchase); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: failed to create purchase: %v", result.TotalRows, err))
			continue
		}
		result.PurchasesCreated++
	}

	slog.Info("Purchase import finished",
		"dryRun", result.DryRun,
		"rows", result.TotalRows,
		"usersCreated", result.UsersCreated,
		"purchasesCreated", result.PurchasesCreated,
		"errors", len(result.Errors))
	return result, nil
}

func (i *PurchaseImporter) parseRow(row []string, cols purchaseColumns) (*models.Purchase, string, string, error) {
	field := func(idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	phone := cleanPhone(field(cols.phone))
	if phone == "" {
		return nil, "", "", fmt.Errorf("no phone number found")
	}
	productID, err := primitive.ObjectIDFromHex(field(cols.product))
	if err != nil {
		return nil, "", "", fmt.Errorf("invalid product id %q", field(cols.product))
	}
	amount, err := strconv.ParseFloat(field(cols.amount), 64)
	if err != nil || amount < 0 {
		return nil, "", "", fmt.Errorf("invalid amount %q", field(cols.amount))
	}

	createdAt := i.now()
	if raw := field(cols.date); raw != "" {
		if createdAt, err = parseDate(raw); err != nil {
			return nil, "", "", err
		}
	}

	payment := models.PaymentStatusPayed
	if raw := field(cols.payment); raw != "" {
		payment = models.PaymentStatus(strings.ToLower(raw))
	}
	approval := models.ApprovalStatusCompleted
	if raw := field(cols.approval); raw != "" {
		approval = models.ApprovalStatus(strings.ToLower(raw))
	}

	ref := field(cols.ref)
	if ref == "" {
		ref = fmt.Sprintf("CSV_IMPORT_%s", primitive.NewObjectID().Hex())
	}

	return &models.Purchase{
		ProductID:       productID,
		Amount:          amount,
		TransactionRef:  ref,
		UserPayment:     payment,
		PaymentApproval: approval,
		CreatedAt:       createdAt,
	}, phone, field(cols.name), nil
}

func (i *PurchaseImporter) resolveUser(ctx context.Context, phone, name string) (primitive.ObjectID, bool, error) {
	existing, err := i.userRepo.FindByPhone(ctx, phone)
	if err == nil {
		return existing.ID, false, nil
	}
	if !apperror.Is(err, apperror.KindNotFound) {
		return primitive.NilObjectID, false, err
	}
	if i.DryRun {
		return primitive.NilObjectID, true, nil
	}
	if name == "" {
		name = MaskPhone(phone)
	}
	user := &models.User{Name: name, Phone: phone, Status: models.UserStatusMember}
	if err := i.userRepo.Create(ctx, user); err != nil {
		return primitive.NilObjectID, false, err
	}
	return user.ID, true, nil
}

// findColumnIndex finds the index of a column in the header
func findColumnIndex(header []string, possibleNames []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range possibleNames {
			if strings.ToLower(name) == h {
				return i
			}
		}
	}
	return -1
}

// cleanPhone keeps only the digits of a phone number, preserving a leading +
func cleanPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	plus := strings.HasPrefix(phone, "+")
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if plus && digits != "" {
		return "+" + digits
	}
	return digits
}

// parseDate parses a date string in various formats
func parseDate(dateStr string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02 15:04:05",
		"01/02/2006",
		"01/02/2006 15:04:05",
		"Jan 2, 2006",
		"2 Jan 2006",
	}
	for _, format := range formats {
		if date, err := time.Parse(format, dateStr); err == nil {
			return date.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}
