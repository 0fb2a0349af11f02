package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost 是 bcrypt 的计算成本。
const PasswordCost = 10

// MaxPasswordBytes 是 bcrypt 可接受的最长输入。
const MaxPasswordBytes = 72

// HashPassword 使用 bcrypt 生成密码哈希。
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPasswordHash 校验密码是否匹配哈希。
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
