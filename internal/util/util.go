package util

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

func NowISO() string {
	return time.Now().Format(time.RFC3339)
}

// NormalizeBool accepts the yes/no spellings used in .env files.
func NormalizeBool(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "yes", "true", "1", "y", "on":
		return true
	default:
		return false
	}
}

func HMACSHA256Hex(secret, msg string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}

// ExportToken signs a competition id for the CSV export link.
func ExportToken(secret string, competitionID int) string {
	return HMACSHA256Hex(secret, "export:"+strconv.Itoa(competitionID))
}

func ValidExportToken(secret string, competitionID int, token string) bool {
	expected := ExportToken(secret, competitionID)
	return hmac.Equal([]byte(expected), []byte(token))
}
