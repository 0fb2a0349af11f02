package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"portfolio/internal/auth"
	"portfolio/internal/config"
	"portfolio/internal/database"
	"portfolio/internal/repository"
)

func main() {
	var (
		username    = flag.String("username", "", "初始管理员用户名（必填）")
		email       = flag.String("email", "", "初始管理员邮箱（必填）")
		databaseURL = flag.String("database-url", "", "数据库连接串（可选，默认读 DATABASE_URL / DB_*）")
	)
	flag.Parse()

	if err := run(strings.TrimSpace(*username), strings.TrimSpace(*email), strings.TrimSpace(*databaseURL)); err != nil {
		log.Fatal(err)
	}
}

// run 创建初始管理员；所有失败都以 error 返回，保证连接池被关闭。
func run(username, email, databaseURL string) (err error) {
	if username == "" {
		return errors.New("missing required flag: --username")
	}
	if email == "" {
		return errors.New("missing required flag: --email")
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if databaseURL != "" {
		cfg.Database.URL = databaseURL
	}

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer func() {
		if closeErr := database.Close(db); closeErr != nil && err == nil {
			err = fmt.Errorf("close database: %w", closeErr)
		}
	}()

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	password, err := generateRandomPassword(24)
	if err != nil {
		return fmt.Errorf("generate password: %w", err)
	}

	user, err := auth.NewCredentials(repository.NewUsers(db)).Register(ctx, username, email, password)
	if err != nil {
		return fmt.Errorf("register user: %w", err)
	}

	fmt.Printf("已创建初始管理员账号：\n")
	fmt.Printf("ID: %d\n", user.ID)
	fmt.Printf("用户名: %s\n", user.Username)
	fmt.Printf("初始密码: %s\n", password)
	fmt.Printf("提示：该密码仅显示一次，请妥善保存。\n")
	return nil
}

// generateRandomPassword 生成 URL 安全的随机初始密码。
func generateRandomPassword(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		bytesLen = 24
	}
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
