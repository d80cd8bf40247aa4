package services

// Identity carries the three optional user identifiers a submission may include.
// Resolution order (email, then telegram, then wallet) matches the reward tables.
type Identity struct {
	Email         string
	TelegramID    string
	WalletAddress string
}

func (id Identity) Resolve() string {
	if id.Email != "" {
		return id.Email
	}
	if id.TelegramID != "" {
		return id.TelegramID
	}
	return id.WalletAddress
}

func (id Identity) Empty() bool {
	return id.Email == "" && id.TelegramID == "" && id.WalletAddress == ""
}
