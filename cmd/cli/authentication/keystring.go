package authentication

// Stores the access token in the OS keyring, keyed by API server.
import (
	"encoding/json"

	"github.com/zalando/go-keyring"
)

const serviceName = "yamdb-cli"

type StoredCredentials struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
	Server      string `json:"server"`
}

func StoreTokens(creds *StoredCredentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return keyring.Set(serviceName, creds.Server, string(data))
}

func GetTokens(server string) (*StoredCredentials, error) {
	value, err := keyring.Get(serviceName, server)
	if err != nil {
		return nil, err
	}

	var creds StoredCredentials
	if err := json.Unmarshal([]byte(value), &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func DeleteTokens(server string) error {
	return keyring.Delete(serviceName, server)
}
