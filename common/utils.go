package common

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// GetUint64FromStr parse decimal or 0x prefixed hex string to uint64
func GetUint64FromStr(str string) (uint64, error) {
	str = strings.TrimSpace(str)
	base := 10
	if strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "0X") {
		str = str[2:]
		base = 16
	}
	res, err := strconv.ParseUint(str, base, 64)
	if err != nil {
		return 0, errors.New("invalid unsigned 64 bit integer: " + str)
	}
	return res, nil
}

// GetInt64FromStr parse decimal string to int64
func GetInt64FromStr(str string) (int64, error) {
	res, err := strconv.ParseInt(strings.TrimSpace(str), 10, 64)
	if err != nil {
		return 0, errors.New("invalid signed 64 bit integer: " + str)
	}
	return res, nil
}

// Now returns timestamp in seconds
func Now() int64 {
	return time.Now().Unix()
}

// NowMilli returns timestamp in milliseconds
func NowMilli() int64 {
	return time.Now().UnixNano() / 1e6
}

// NowMilliStr returns timestamp in milliseconds as string
func NowMilliStr() string {
	return strconv.FormatInt(NowMilli(), 10)
}

// FileExist checks if a file exists at filePath.
func FileExist(filePath string) bool {
	_, err := os.Stat(filePath)
	if err != nil && os.IsNotExist(err) {
		return false
	}
	return true
}

// AbsolutePath returns datadir + filename, or filename if it is absolute.
func AbsolutePath(datadir, filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(datadir, filename)
}

// ToLowerTrim lower and trim space
func ToLowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
