package qrcode

import (
	"fmt"

	"github.com/skip2/go-qrcode"

	"sprout/internal/domain/service"
)

type pairingCodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// NewPairingCodeService creates a QR generator for device pairing tokens.
func NewPairingCodeService(size int, errorCorrectionLevel string) service.PairingCodeService {
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	return &pairingCodeService{
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// GeneratePairingQR renders the raw pairing token as a PNG QR code. The
// mobile app scans it instead of typing the 20-character token.
func (s *pairingCodeService) GeneratePairingQR(token string) ([]byte, error) {
	qrCode, err := qrcode.New(token, s.errorCorrectionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}

	return pngBytes, nil
}
