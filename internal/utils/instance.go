package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"os"
	"strings"
)

// InstanceID names this server process's machine with a short stable id
// like "SHOP-A1B2C3D4", derived from the hostname and first active MAC
// address. It tags logs and the status endpoint so replicas sharing one
// database can be told apart.
func InstanceID() string {
	host, _ := os.Hostname()

	var mac string
	if interfaces, err := net.Interfaces(); err == nil {
		for _, i := range interfaces {
			if i.Flags&net.FlagUp != 0 && i.Flags&net.FlagLoopback == 0 && len(i.HardwareAddr) > 0 {
				mac = i.HardwareAddr.String()
				break
			}
		}
	}

	if host == "" && mac == "" {
		return "SHOP-UNKNOWN"
	}

	hash := sha256.Sum256([]byte(host + "|" + mac))
	return "SHOP-" + strings.ToUpper(hex.EncodeToString(hash[:])[:8])
}
