// Package keyring stores RPC credentials. It uses the system keyring
// when available, falling back to an encrypted file next to the
// settings when not.
package keyring

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/scrypt"

	"github.com/rkost/transmission/common"
)

const serviceName = "transmission-rpc"

var (
	useLocalStorage bool
	localStoreMu    sync.RWMutex
	localStore      map[string]string
	localStoreFile  string
	encryptionKey   []byte
	initOnce        sync.Once
)

func initStorage() {
	initOnce.Do(func() {
		probe := "transmission-keyring-probe"
		if err := keyring.Set(serviceName, probe, "probe"); err == nil {
			keyring.Delete(serviceName, probe)
			useLocalStorage = false
			return
		}
		useLocalStorage = true
		initLocalStorage()
	})
}

func initLocalStorage() {
	configDir, err := common.GetConfigDir()
	if err != nil {
		return
	}
	os.MkdirAll(configDir, 0700)
	localStoreFile = filepath.Join(configDir, ".credentials")

	// Derive the file key from machine-local data so the credential
	// file is useless when copied to another host.
	hostname, _ := os.Hostname()
	keyData := fmt.Sprintf("%s-%s-%d", hostname, machineID(), os.Getuid())
	key, err := scrypt.Key([]byte(keyData), []byte(serviceName), 1<<15, 8, 1, 32)
	if err != nil {
		return
	}
	encryptionKey = key

	localStore = make(map[string]string)
	loadLocalStore()
}

func machineID() string {
	data, err := os.ReadFile("/etc/machine-id")
	if err == nil {
		return strings.TrimSpace(string(data))
	}
	return "default-machine-id"
}

func loadLocalStore() {
	data, err := os.ReadFile(localStoreFile)
	if err != nil {
		return
	}
	decrypted, err := decrypt(data)
	if err != nil {
		return
	}
	json.Unmarshal(decrypted, &localStore)
}

func saveLocalStore() error {
	localStoreMu.RLock()
	data, err := json.Marshal(localStore)
	localStoreMu.RUnlock()
	if err != nil {
		return err
	}
	encrypted, err := encrypt(data)
	if err != nil {
		return err
	}
	return os.WriteFile(localStoreFile, encrypted, 0600)
}

func encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return []byte(base64.StdEncoding.EncodeToString(ciphertext)), nil
}

func decrypt(data []byte) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// Store saves the password for an RPC username.
func Store(username, password string) error {
	if username == "" {
		return errors.New("username cannot be empty")
	}
	if password == "" {
		return errors.New("password cannot be empty")
	}
	initStorage()

	if useLocalStorage {
		localStoreMu.Lock()
		localStore[username] = password
		localStoreMu.Unlock()
		if err := saveLocalStore(); err != nil {
			return common.WrapError(common.ErrCredentialStorage, err.Error())
		}
		return nil
	}

	if err := keyring.Set(serviceName, username, password); err != nil {
		useLocalStorage = true
		initLocalStorage()
		localStoreMu.Lock()
		localStore[username] = password
		localStoreMu.Unlock()
		if err := saveLocalStore(); err != nil {
			return common.WrapError(common.ErrCredentialStorage, err.Error())
		}
	}
	return nil
}

// Get retrieves the password for an RPC username.
func Get(username string) (string, error) {
	if username == "" {
		return "", errors.New("username cannot be empty")
	}
	initStorage()

	if useLocalStorage {
		localStoreMu.RLock()
		password, exists := localStore[username]
		localStoreMu.RUnlock()
		if !exists {
			return "", common.ErrCredentialsNotFound
		}
		return password, nil
	}

	password, err := keyring.Get(serviceName, username)
	if err != nil {
		localStoreMu.RLock()
		password, exists := localStore[username]
		localStoreMu.RUnlock()
		if exists {
			return password, nil
		}
		return "", common.ErrCredentialsNotFound
	}
	return password, nil
}

// Delete removes the password for an RPC username.
func Delete(username string) error {
	if username == "" {
		return errors.New("username cannot be empty")
	}
	initStorage()

	if useLocalStorage {
		localStoreMu.Lock()
		delete(localStore, username)
		localStoreMu.Unlock()
		return saveLocalStore()
	}

	keyring.Delete(serviceName, username)
	localStoreMu.Lock()
	delete(localStore, username)
	localStoreMu.Unlock()
	saveLocalStore()
	return nil
}

// Exists reports whether a password is stored for the username.
func Exists(username string) bool {
	_, err := Get(username)
	return err == nil
}
