package signer

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"strings"

	"github.com/pborman/uuid"
	"github.com/stellar/go/keypair"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

// scrypt parameters
const (
	StandardScryptN = 1 << 18
	StandardScryptP = 1
	LightScryptN    = 1 << 12
	LightScryptP    = 6

	scryptR     = 8
	scryptDKLen = 32

	keystoreVersion = 1
	cipherName      = "nacl-secretbox"
	kdfName         = "scrypt"
)

// ErrDecrypt wrong password or corrupted keystore
var ErrDecrypt = errors.New("could not decrypt key with given password")

type scryptParams struct {
	N     int    `json:"n"`
	R     int    `json:"r"`
	P     int    `json:"p"`
	DKLen int    `json:"dklen"`
	Salt  string `json:"salt"`
}

type cryptoJSON struct {
	Cipher     string       `json:"cipher"`
	CipherText string       `json:"ciphertext"`
	Nonce      string       `json:"nonce"`
	KDF        string       `json:"kdf"`
	KDFParams  scryptParams `json:"kdfparams"`
}

type encryptedKeyJSON struct {
	Address string     `json:"address"`
	Crypto  cryptoJSON `json:"crypto"`
	ID      string     `json:"id"`
	Version int        `json:"version"`
}

// EncryptKey encrypt secret seed of key with password
func EncryptKey(key *keypair.Full, password string, scryptN, scryptP int) ([]byte, error) {
	salt := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	derivedKey, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptDKLen)
	if err != nil {
		return nil, err
	}
	var nonce [24]byte
	if _, err = io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}
	var secretKey [32]byte
	copy(secretKey[:], derivedKey)
	cipherText := secretbox.Seal(nil, []byte(key.Seed()), &nonce, &secretKey)

	return json.Marshal(encryptedKeyJSON{
		Address: key.Address(),
		Crypto: cryptoJSON{
			Cipher:     cipherName,
			CipherText: hex.EncodeToString(cipherText),
			Nonce:      hex.EncodeToString(nonce[:]),
			KDF:        kdfName,
			KDFParams: scryptParams{
				N:     scryptN,
				R:     scryptR,
				P:     scryptP,
				DKLen: scryptDKLen,
				Salt:  hex.EncodeToString(salt),
			},
		},
		ID:      uuid.NewRandom().String(),
		Version: keystoreVersion,
	})
}

// DecryptKey decrypt keystore json with password
func DecryptKey(keyjson []byte, password string) (*keypair.Full, error) {
	var k encryptedKeyJSON
	if err := json.Unmarshal(keyjson, &k); err != nil {
		return nil, err
	}
	if k.Version != keystoreVersion {
		return nil, fmt.Errorf("version not supported: %v", k.Version)
	}
	if k.Crypto.Cipher != cipherName || k.Crypto.KDF != kdfName {
		return nil, fmt.Errorf("cipher %v with kdf %v not supported", k.Crypto.Cipher, k.Crypto.KDF)
	}
	params := k.Crypto.KDFParams
	salt, err := hex.DecodeString(params.Salt)
	if err != nil {
		return nil, err
	}
	nonceBytes, err := hex.DecodeString(k.Crypto.Nonce)
	if err != nil || len(nonceBytes) != 24 {
		return nil, fmt.Errorf("wrong nonce %v", k.Crypto.Nonce)
	}
	cipherText, err := hex.DecodeString(k.Crypto.CipherText)
	if err != nil {
		return nil, err
	}
	derivedKey, err := scrypt.Key([]byte(password), salt, params.N, params.R, params.P, params.DKLen)
	if err != nil {
		return nil, err
	}
	var nonce [24]byte
	var secretKey [32]byte
	copy(nonce[:], nonceBytes)
	copy(secretKey[:], derivedKey)
	seed, ok := secretbox.Open(nil, cipherText, &nonce, &secretKey)
	if !ok {
		return nil, ErrDecrypt
	}
	key, err := keypair.ParseFull(string(seed))
	if err != nil {
		return nil, err
	}
	if k.Address != "" && key.Address() != k.Address {
		return nil, fmt.Errorf("key content mismatch: have address %v, want %v", key.Address(), k.Address)
	}
	return key, nil
}

// LoadKeyStore load key from keystore file and password file
func LoadKeyStore(keyfile, passfile string) (*keypair.Full, error) {
	keyjson, err := ioutil.ReadFile(keyfile)
	if err != nil {
		return nil, fmt.Errorf("read keystore fail %w", err)
	}
	passdata, err := ioutil.ReadFile(passfile)
	if err != nil {
		return nil, fmt.Errorf("read password fail %w", err)
	}
	passwd := strings.TrimSpace(string(passdata))
	key, err := DecryptKey(keyjson, passwd)
	if err != nil {
		return nil, fmt.Errorf("decrypt key fail %w", err)
	}
	return key, nil
}
