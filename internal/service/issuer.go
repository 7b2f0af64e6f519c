package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ovation/internal/models"
)

// Issuer produces immutable ticket records, each carrying an opaque signed QR
// payload. It appends only; inventory and the ledger are never touched here.
type Issuer struct {
	secret []byte
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret)}
}

// QRClaims is the scannable content of a ticket. UnitIndex disambiguates the
// units of a multi-ticket purchase, so every payload is unique.
type QRClaims struct {
	BuyerID       int64  `json:"buyer_id"`
	EventID       int64  `json:"event_id"`
	TransactionID string `json:"transaction_id"`
	UnitIndex     int    `json:"unit_index"`
	IssuedAt      int64  `json:"issued_at"`
}

// BuyerInfo is the purchaser snapshot stamped onto a ticket.
type BuyerInfo struct {
	ID    int64
	Name  string
	Email string
}

// Issue builds one ticket for the given unit of a transaction.
func (i *Issuer) Issue(transactionID string, unitIndex int, buyer BuyerInfo, event *models.Event, ticketType string, unitPrice decimal.Decimal, issuedAt time.Time) (models.Ticket, error) {
	payload, err := i.encode(QRClaims{
		BuyerID:       buyer.ID,
		EventID:       event.ID,
		TransactionID: transactionID,
		UnitIndex:     unitIndex,
		IssuedAt:      issuedAt.Unix(),
	})
	if err != nil {
		return models.Ticket{}, fmt.Errorf("failed to encode QR payload: %w", err)
	}

	return models.Ticket{
		ID:            uuid.New().String(),
		BuyerID:       buyer.ID,
		EventID:       event.ID,
		TransactionID: transactionID,
		UnitIndex:     unitIndex,
		TicketType:    ticketType,
		UnitPrice:     unitPrice,
		BuyerName:     buyer.Name,
		BuyerEmail:    buyer.Email,
		EventName:     event.Title,
		QRPayload:     payload,
		IssuedAt:      issuedAt,
	}, nil
}

// Verify checks a scanned payload's signature and returns its claims.
func (i *Issuer) Verify(payload string) (*QRClaims, error) {
	parts := strings.Split(payload, ".")
	if len(parts) != 2 {
		return nil, fmt.Errorf("malformed QR payload")
	}

	body, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("malformed QR payload body: %w", err)
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("malformed QR payload signature: %w", err)
	}

	if !hmac.Equal(sig, i.sign(body)) {
		return nil, fmt.Errorf("QR payload signature mismatch")
	}

	var claims QRClaims
	if err := json.Unmarshal(body, &claims); err != nil {
		return nil, fmt.Errorf("failed to decode QR claims: %w", err)
	}

	return &claims, nil
}

func (i *Issuer) encode(claims QRClaims) (string, error) {
	body, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(body) + "." +
		base64.RawURLEncoding.EncodeToString(i.sign(body)), nil
}

func (i *Issuer) sign(body []byte) []byte {
	mac := hmac.New(sha256.New, i.secret)
	mac.Write(body)
	return mac.Sum(nil)
}
