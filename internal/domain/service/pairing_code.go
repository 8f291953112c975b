package service

// PairingCodeService renders a device pairing token as a scannable code.
type PairingCodeService interface {
	// GeneratePairingQR returns a PNG image encoding the pairing token.
	GeneratePairingQR(token string) ([]byte, error)
}
