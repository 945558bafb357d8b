package license

import (
	"crypto/md5"
	"fmt"
	"net"
	"os"
	"strings"
)

// MachineCode 本机机器码：MAC 地址与主机名摘要的前 24 位大写十六进制。
func MachineCode() string {
	hostname, _ := os.Hostname()
	sum := md5.Sum([]byte(primaryMAC() + hostname))
	hexSum := fmt.Sprintf("%x", sum)
	return strings.ToUpper(hexSum[:24])
}

// primaryMAC 第一块非回环且有硬件地址的网卡 MAC。
func primaryMAC() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return ""
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) == 0 {
			continue
		}
		return iface.HardwareAddr.String()
	}
	return ""
}
