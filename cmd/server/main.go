package main

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gpcards/config"
	"gpcards/database"
	"gpcards/server"
)

func main() {
	configFile := flag.String("config", "", "配置文件路径")
	port := flag.String("port", "", "监听端口，覆盖配置")
	licensePubB64 := flag.String("license-pub", "", "授权校验公钥（base64），为空则不校验")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if *port != "" {
		cfg.ServerPort = *port
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	pubB64 := *licensePubB64
	if pubB64 == "" {
		pubB64 = cfg.LicensePub
	}
	var pub ed25519.PublicKey
	if pubB64 != "" {
		raw, err := base64.StdEncoding.DecodeString(pubB64)
		if err != nil || len(raw) != ed25519.PublicKeySize {
			log.Fatalf("公钥格式无效")
		}
		pub = ed25519.PublicKey(raw)
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("打开数据库失败: %v", err)
	}
	defer db.Close()

	srv, err := server.New(db, server.Config{
		Port:       cfg.ServerPort,
		ExportDir:  cfg.ExportDir,
		LicensePub: pub,
	}, logger)
	if err != nil {
		log.Fatalf("创建服务失败: %v", err)
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("服务异常退出: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务停止失败", "error", err)
	}
}
