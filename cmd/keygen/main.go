// keygen 授权码工具：生成密钥对、签发授权码、查看本机机器码。
package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"os"

	"gpcards/license"
)

func main() {
	mode := flag.String("mode", "machine", "操作: machine|genkey|issue|verify")
	privB64 := flag.String("priv", "", "签发私钥（base64）")
	pubB64 := flag.String("pub", "", "校验公钥（base64）")
	machine := flag.String("machine", "", "目标机器码，为空取本机")
	expire := flag.String("expire", license.LifetimeExpire, "过期日期 YYYY-MM-DD 或 LIFETIME")
	key := flag.String("key", "", "待校验的授权码")
	flag.Parse()

	switch *mode {
	case "machine":
		fmt.Println(license.MachineCode())

	case "genkey":
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			log.Fatalf("生成密钥失败: %v", err)
		}
		fmt.Println("私钥:", base64.StdEncoding.EncodeToString(priv))
		fmt.Println("公钥:", base64.StdEncoding.EncodeToString(pub))

	case "issue":
		priv := decodeKey(*privB64, ed25519.PrivateKeySize, "私钥")
		code := *machine
		if code == "" {
			code = license.MachineCode()
		}
		k, err := license.Issue(ed25519.PrivateKey(priv), code, *expire)
		if err != nil {
			log.Fatalf("签发失败: %v", err)
		}
		fmt.Println(k)

	case "verify":
		pub := decodeKey(*pubB64, ed25519.PublicKeySize, "公钥")
		code := *machine
		if code == "" {
			code = license.MachineCode()
		}
		payload, err := license.Verify(ed25519.PublicKey(pub), *key, code)
		if err != nil {
			log.Fatalf("校验失败: %v", err)
		}
		fmt.Printf("有效，过期: %s\n", payload.Expire)

	default:
		fmt.Fprintf(os.Stderr, "未知操作 %q\n", *mode)
		os.Exit(2)
	}
}

func decodeKey(b64 string, size int, name string) []byte {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil || len(raw) != size {
		log.Fatalf("%s格式无效", name)
	}
	return raw
}
