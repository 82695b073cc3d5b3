package payment

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/sawitharvest/billing/pkg/qrcode"
)

// Bank identifies a supported virtual-account bank.
type Bank string

const (
	BankBCA     Bank = "BCA"
	BankBRI     Bank = "BRI"
	BankBNI     Bank = "BNI"
	BankMandiri Bank = "MANDIRI"
	BankPermata Bank = "PERMATA"
	BankCIMB    Bank = "CIMB"
)

// vaPrefixes maps each bank to its fixed 4-digit virtual-account prefix.
// These values are wire-compatible with existing clients and must not change.
var vaPrefixes = map[Bank]string{
	BankBCA:     "3901",
	BankBRI:     "2627",
	BankBNI:     "9880",
	BankMandiri: "8950",
	BankPermata: "8758",
	BankCIMB:    "8059",
}

// vaAccountName is the fixed payee display name shown with a virtual account.
const vaAccountName = "SAWIT HARVEST"

// defaultBank is used when a bank-transfer checkout does not name a bank.
const defaultBank = BankBCA

// qrImageSize is the pixel size of the rendered QRIS image.
const qrImageSize = 256

// InstructionType discriminates the method-specific instruction payloads.
type InstructionType string

const (
	InstructionVirtualAccount InstructionType = "VIRTUAL_ACCOUNT"
	InstructionQRIS           InstructionType = "QRIS"
)

// Instructions carries the external payment instructions for a transaction.
// Only bank transfers and QRIS have defined formats; other methods carry none.
type Instructions struct {
	Type        InstructionType `json:"type"`
	Bank        Bank            `json:"bank,omitempty"`
	VANumber    string          `json:"va_number,omitempty"`
	AccountName string          `json:"account_name,omitempty"`
	QRString    string          `json:"qr_string,omitempty"`
	// QRImage is a data-URI PNG rendering of QRString, ready for an <img> tag.
	QRImage string `json:"qr_image,omitempty"`
}

// buildInstructions generates the method-specific instructions for a
// transaction. Returns nil (no instructions) for methods without a defined
// format.
func buildInstructions(method Method, bank Bank, txnID string, amount int64, now time.Time) (*Instructions, error) {
	switch method {
	case MethodBankTransfer:
		if bank == "" {
			bank = defaultBank
		}
		va, err := virtualAccountNumber(bank)
		if err != nil {
			return nil, err
		}
		return &Instructions{
			Type:        InstructionVirtualAccount,
			Bank:        bank,
			VANumber:    va,
			AccountName: vaAccountName,
		}, nil

	case MethodQRIS:
		payload := qrisPayload(txnID, amount, now)
		img, err := qrImage(payload)
		if err != nil {
			return nil, err
		}
		return &Instructions{
			Type:     InstructionQRIS,
			QRString: payload,
			QRImage:  img,
		}, nil
	}

	return nil, nil
}

// virtualAccountNumber concatenates the bank's 4-digit prefix with a
// 9-digit random suffix into a 13-digit virtual-account number. The suffix
// is drawn from crypto/rand: 9x10^8 possibilities make collisions within
// the 24-hour payment window negligible.
func virtualAccountNumber(bank Bank) (string, error) {
	prefix, ok := vaPrefixes[bank]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownBank, bank)
	}

	n, err := rand.Int(rand.Reader, big.NewInt(900000000))
	if err != nil {
		return "", errors.Join(ErrInstructionGeneration, err)
	}
	return fmt.Sprintf("%s%d", prefix, n.Int64()+100000000), nil
}

// qrisPayload builds the opaque QRIS string. It has no cryptographic
// meaning; clients only render it as a QR code.
func qrisPayload(txnID string, amount int64, now time.Time) string {
	return fmt.Sprintf("QRIS|%s|AMT:%d|TS:%d", txnID, amount, now.UnixMilli())
}

// qrImage renders the payload as a base64 data-URI PNG.
func qrImage(payload string) (string, error) {
	img, err := qrcode.GenerateDataURI(payload, qrImageSize)
	if err != nil {
		return "", errors.Join(ErrInstructionGeneration, err)
	}
	return img, nil
}
