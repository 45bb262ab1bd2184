package member

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// TestValidateRegistration 测试注册信息校验
func TestValidateRegistration(t *testing.T) {
	svc := NewService()

	m, err := svc.ValidateRegistration("  Alice@Example.COM ", "passw0rd", "  Alice  ")
	if err != nil {
		t.Fatalf("期望成功，实际失败: %v", err)
	}
	if m.Email != "alice@example.com" {
		t.Errorf("期望邮箱被小写化并trim，实际%q", m.Email)
	}
	if m.Name != "Alice" {
		t.Errorf("期望姓名被trim，实际%q", m.Name)
	}
	if m.Role != RoleMember {
		t.Errorf("新注册读者期望角色为member，实际%q", m.Role)
	}
	if m.Password == "passw0rd" {
		t.Error("密码应该以哈希形式存储")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.Password), []byte("passw0rd")); err != nil {
		t.Errorf("存储的哈希应该能验证原始密码: %v", err)
	}
}

// TestValidateRegistration_InvalidInput 测试注册信息非法输入
func TestValidateRegistration_InvalidInput(t *testing.T) {
	svc := NewService()

	cases := []struct {
		name                  string
		email, password, who  string
		want                  error
	}{
		{"邮箱格式错误", "not-an-email", "passw0rd", "Alice", ErrInvalidEmail},
		{"邮箱为空", "", "passw0rd", "Alice", ErrInvalidEmail},
		{"姓名为空", "a@b.com", "passw0rd", "   ", ErrInvalidName},
	}
	for _, tc := range cases {
		_, err := svc.ValidateRegistration(tc.email, tc.password, tc.who)
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: 期望%v，实际%v", tc.name, tc.want, err)
		}
	}
}

// TestPasswordStrength 测试密码强度规则
func TestPasswordStrength(t *testing.T) {
	svc := NewService()

	weak := []string{"short1", "12345678", "password", "密码密码密码密码"}
	for _, p := range weak {
		if _, err := svc.ValidateRegistration("a@b.com", p, "Alice"); err == nil {
			t.Errorf("弱密码%q应该被拒绝", p)
		}
	}

	if _, err := svc.ValidateRegistration("a@b.com", "abcdefg1", "Alice"); err != nil {
		t.Errorf("符合强度规则的密码应该通过，实际返回: %v", err)
	}
}

// TestVerifyPassword 测试密码校验
func TestVerifyPassword(t *testing.T) {
	svc := NewService()

	// 用低成本哈希加速测试
	hashed, err := bcrypt.GenerateFromPassword([]byte("passw0rd"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成测试哈希失败: %v", err)
	}

	if err := svc.VerifyPassword(string(hashed), "passw0rd"); err != nil {
		t.Errorf("正确密码应该通过校验: %v", err)
	}
	if err := svc.VerifyPassword(string(hashed), "wrong-password"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("错误密码期望ErrInvalidPassword，实际%v", err)
	}
	if err := svc.VerifyPassword("not-a-hash", "passw0rd"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("非法哈希期望ErrInvalidPassword，实际%v", err)
	}
}
