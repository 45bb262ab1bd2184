package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 教学说明：集成测试辅助工具
// 测试对着运行中的服务发真实HTTP请求，运行前先启动依赖和服务：
//   docker-compose up -d mysql redis
//   go run ./cmd/api
// 馆员操作的用例需要一个admin角色账号，默认读LIBRARY_TEST_ADMIN_EMAIL /
// LIBRARY_TEST_ADMIN_PASSWORD环境变量，没有配置时跳过相关用例

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RegisterData 注册响应数据
type RegisterData struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// LoginData 登录响应数据
type LoginData struct {
	Member       MemberData `json:"member"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int64      `json:"expires_in"`
}

// MemberData 读者信息
type MemberData struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// BookData 图书响应数据
type BookData struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	Genre           string `json:"genre"`
	PublicationYear int    `json:"publication_year"`
	Description     string `json:"description"`
}

// SearchData 检索响应数据
type SearchData struct {
	Books      []BookData `json:"books"`
	TotalCount int        `json:"total_count"`
	Term       string     `json:"term"`
	Genre      string     `json:"genre"`
	SortBy     string     `json:"sort_by"`
	SortOrder  string     `json:"sort_order"`
}

// CopyData 副本响应数据
type CopyData struct {
	ID     uint   `json:"id"`
	BookID string `json:"book_id"`
	Status string `json:"status"`
}

// StatsData 副本统计响应数据
type StatsData struct {
	BookID    string `json:"book_id"`
	Total     int64  `json:"total"`
	Available int64  `json:"available"`
	Borrowed  int64  `json:"borrowed"`
}

// AvailabilityData 可借性响应数据
type AvailabilityData struct {
	BookID    string `json:"book_id"`
	Available bool   `json:"available"`
	Count     int64  `json:"count"`
}

// BorrowData 借书响应数据
type BorrowData struct {
	LoanNo     string `json:"loan_no"`
	BookID     string `json:"book_id"`
	BookTitle  string `json:"book_title"`
	CopyID     uint   `json:"copy_id"`
	BorrowedAt string `json:"borrowed_at"`
	DueAt      string `json:"due_at"`
}

// ReturnData 还书响应数据
type ReturnData struct {
	LoanNo     string `json:"loan_no"`
	BookID     string `json:"book_id"`
	CopyID     uint   `json:"copy_id"`
	ReturnedAt string `json:"returned_at"`
	Overdue    bool   `json:"overdue"`
}

// LoanData 借阅记录响应数据
type LoanData struct {
	LoanNo     string `json:"loan_no"`
	MemberID   uint   `json:"member_id"`
	CopyID     uint   `json:"copy_id"`
	BookID     string `json:"book_id"`
	BorrowedAt string `json:"borrowed_at"`
	DueAt      string `json:"due_at"`
	ReturnedAt string `json:"returned_at"`
	Overdue    bool   `json:"overdue"`
}

// doJSON 发送HTTP请求并解析统一响应
func doJSON(t *testing.T, method, url string, data interface{}, token string) *Response {
	t.Helper()

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")

	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(respBody, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(respBody))

	return &result
}

// PostJSON 发送POST请求并解析JSON响应
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, http.MethodPost, url, data, token)
}

// GetJSON 发送GET请求并解析JSON响应
func GetJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, http.MethodGet, url, nil, token)
}

// PatchJSON 发送PATCH请求并解析JSON响应
func PatchJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, http.MethodPatch, url, data, token)
}

// DeleteJSON 发送DELETE请求并解析JSON响应
func DeleteJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, http.MethodDelete, url, nil, token)
}

// MustUnmarshal 解析响应Data字段
func MustUnmarshal(t *testing.T, data json.RawMessage, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(data, v), "解析响应数据失败: %s", string(data))
}

// GenerateTestEmail 生成唯一的测试邮箱
// 使用纳秒时间戳确保唯一性，避免测试重复运行时邮箱冲突
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}

// RegisterTestMember 注册测试读者并返回Token
// 封装注册+登录的完整流程，让测试更关注业务逻辑
func RegisterTestMember(t *testing.T, name string) (email string, token string) {
	t.Helper()

	email = GenerateTestEmail(name)
	registerResp := PostJSON(t, BaseURL+"/members/register", map[string]string{
		"email":    email,
		"password": "Test1234",
		"name":     name,
	}, "")
	require.Equal(t, 0, registerResp.Code, "注册失败: %s", registerResp.Message)

	loginResp := PostJSON(t, BaseURL+"/members/login", map[string]string{
		"email":    email,
		"password": "Test1234",
	}, "")
	require.Equal(t, 0, loginResp.Code, "登录失败: %s", loginResp.Message)

	var loginData LoginData
	MustUnmarshal(t, loginResp.Data, &loginData)
	return email, loginData.AccessToken
}

// LoginAdmin 用馆员账号登录并返回Token
// 馆员账号通过环境变量注入（数据库初始化脚本创建）；
// 没有配置时跳过依赖馆员权限的用例
func LoginAdmin(t *testing.T) string {
	t.Helper()

	email := os.Getenv("LIBRARY_TEST_ADMIN_EMAIL")
	password := os.Getenv("LIBRARY_TEST_ADMIN_PASSWORD")
	if email == "" || password == "" {
		t.Skip("未配置馆员测试账号(LIBRARY_TEST_ADMIN_EMAIL/PASSWORD)，跳过")
	}

	loginResp := PostJSON(t, BaseURL+"/members/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, 0, loginResp.Code, "馆员登录失败: %s", loginResp.Message)

	var loginData LoginData
	MustUnmarshal(t, loginResp.Data, &loginData)
	require.Equal(t, "admin", loginData.Member.Role, "测试账号不是馆员角色")
	return loginData.AccessToken
}

// CreateTestBook 新增测试图书并返回图书编号
func CreateTestBook(t *testing.T, adminToken, title, genre string) string {
	t.Helper()

	resp := PostJSON(t, BaseURL+"/books", map[string]interface{}{
		"title":  title,
		"author": "测试作者",
		"genre":  genre,
	}, adminToken)
	require.Equal(t, 0, resp.Code, "新增图书失败: %s", resp.Message)

	var data BookData
	MustUnmarshal(t, resp.Data, &data)
	return data.ID
}

// AddTestCopies 为书目入库n个副本
func AddTestCopies(t *testing.T, adminToken, bookID string, n int) []uint {
	t.Helper()

	ids := make([]uint, 0, n)
	for i := 0; i < n; i++ {
		resp := PostJSON(t, BaseURL+"/copies", map[string]string{"book_id": bookID}, adminToken)
		require.Equal(t, 0, resp.Code, "副本入库失败: %s", resp.Message)

		var data CopyData
		MustUnmarshal(t, resp.Data, &data)
		ids = append(ids, data.ID)
	}
	return ids
}
