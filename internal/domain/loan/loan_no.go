package loan

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateLoanNo 生成借阅单号
// 格式：LN + 时间戳(秒) + 6位随机数，如 LN1699248000123456
// 单号设计原则：
// 1. 全局唯一（时间戳+随机数，数据库唯一索引兜底）
// 2. 时间有序（便于按时间排查问题）
// 3. 不可预测（避免暴露业务量）
func GenerateLoanNo() string {
	timestamp := time.Now().Unix()
	random := rand.Intn(1000000)
	return fmt.Sprintf("LN%d%06d", timestamp, random)
}
