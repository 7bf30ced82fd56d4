package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/auth"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/config"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/database"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/store"
)

func main() {
	var (
		username = flag.String("username", "", "要创建的用户名（必填）")
		dbHost   = flag.String("db-host", "", "数据库 Host（可选，默认读 DATABASE_HOST）")
		dbPort   = flag.Int("db-port", 0, "数据库 Port（可选，默认读 DATABASE_PORT）")
		dbName   = flag.String("db-name", "", "数据库名（可选，默认读 POSTGRES_DB）")
		dbUser   = flag.String("db-user", "", "数据库用户（可选，默认读 POSTGRES_USER）")
		dbPass   = flag.String("db-password", "", "数据库密码（可选，默认读 POSTGRES_PASSWORD）")
		sslMode  = flag.String("db-sslmode", "", "数据库 SSLMODE（可选，默认读 DATABASE_SSLMODE）")
		cost     = flag.Int("bcrypt-cost", 12, "bcrypt cost")
	)
	flag.Parse()

	u := strings.TrimSpace(*username)
	if u == "" {
		log.Fatal("missing required flag: --username")
	}

	dbCfg, err := databaseConfig(*dbHost, *dbPort, *dbName, *dbUser, *dbPass, *sslMode)
	if err != nil {
		log.Fatalf("load database config: %v", err)
	}

	db, err := database.InitDatabase(dbCfg)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	password, err := generateRandomPassword(24)
	if err != nil {
		log.Fatalf("generate password: %v", err)
	}
	hashed, err := auth.NewPasswordHasher(*cost).Hash(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := store.New(db).CreateUser(ctx, u, hashed); err != nil {
		log.Fatalf("create user %q: %v", u, err)
	}

	fmt.Printf("已创建用户：\n")
	fmt.Printf("用户名: %s\n", u)
	fmt.Printf("初始密码: %s\n", password)
	fmt.Printf("提示：该密码仅显示一次，请妥善保存。\n")
}

// databaseConfig 以命令行参数优先，其次环境变量，最后使用默认值。
func databaseConfig(host string, port int, name, user, password, sslmode string) (config.DatabaseConfig, error) {
	pick := func(flagValue, env, fallback string) string {
		if v := strings.TrimSpace(flagValue); v != "" {
			return v
		}
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
		return fallback
	}

	if port <= 0 {
		port = 5432
		if env := strings.TrimSpace(os.Getenv("DATABASE_PORT")); env != "" {
			p, err := strconv.Atoi(env)
			if err != nil {
				return config.DatabaseConfig{}, fmt.Errorf("parse DATABASE_PORT: %w", err)
			}
			port = p
		}
	}

	cfg := config.DatabaseConfig{
		Host:     pick(host, "DATABASE_HOST", "localhost"),
		Port:     port,
		Name:     pick(name, "POSTGRES_DB", ""),
		User:     pick(user, "POSTGRES_USER", ""),
		Password: pick(password, "POSTGRES_PASSWORD", ""),
		SSLMode:  pick(sslmode, "DATABASE_SSLMODE", "disable"),
	}
	switch {
	case cfg.Name == "":
		return config.DatabaseConfig{}, errors.New("database name is required (POSTGRES_DB)")
	case cfg.User == "":
		return config.DatabaseConfig{}, errors.New("database user is required (POSTGRES_USER)")
	case cfg.Password == "":
		return config.DatabaseConfig{}, errors.New("database password is required (POSTGRES_PASSWORD)")
	}
	return cfg, nil
}

func generateRandomPassword(bytesLen int) (string, error) {
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
