package integration

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 借阅模块集成测试
//
// 测试场景覆盖：
// 1. 借书→可借性变化→还书的完整闭环
// 2. 在借上限
// 3. 重复归还、按书归还
// 4. 并发借书不超卖

// newLendingBook 准备一本带副本的测试书
func newLendingBook(t *testing.T, adminToken string, copies int) string {
	t.Helper()
	bookID := CreateTestBook(t, adminToken, fmt.Sprintf("借阅测试_%d", time.Now().UnixNano()), "借阅测试")
	AddTestCopies(t, adminToken, bookID, copies)
	return bookID
}

// TestBorrowReturnCycle 测试借还闭环
func TestBorrowReturnCycle(t *testing.T) {
	adminToken := LoginAdmin(t)
	_, memberToken := RegisterTestMember(t, "cycle")
	bookID := newLendingBook(t, adminToken, 1)

	// 1. 初始可借
	availResp := GetJSON(t, BaseURL+"/books/"+bookID+"/availability", "")
	require.Equal(t, 0, availResp.Code, "查询可借性失败: %s", availResp.Message)
	var avail AvailabilityData
	MustUnmarshal(t, availResp.Data, &avail)
	require.True(t, avail.Available, "入库后应该可借")
	require.Equal(t, int64(1), avail.Count, "可借副本数应该是1")

	// 2. 借书
	borrowResp := PostJSON(t, BaseURL+"/loans", map[string]string{"book_id": bookID}, memberToken)
	require.Equal(t, 0, borrowResp.Code, "借书失败: %s", borrowResp.Message)
	var borrow BorrowData
	MustUnmarshal(t, borrowResp.Data, &borrow)
	assert.NotEmpty(t, borrow.LoanNo, "应该返回借阅单号")

	// 应还时间 = 借出时间 + 14天
	borrowedAt, err := time.Parse(time.RFC3339, borrow.BorrowedAt)
	require.NoError(t, err, "借出时间格式错误")
	dueAt, err := time.Parse(time.RFC3339, borrow.DueAt)
	require.NoError(t, err, "应还时间格式错误")
	assert.Equal(t, 14*24*time.Hour, dueAt.Sub(borrowedAt), "借期应该是14天")

	// 3. 唯一副本借出后不可借
	availResp = GetJSON(t, BaseURL+"/books/"+bookID+"/availability", "")
	MustUnmarshal(t, availResp.Data, &avail)
	assert.False(t, avail.Available, "唯一副本借出后应该不可借")

	// 在借列表包含这笔借阅
	activeResp := GetJSON(t, BaseURL+"/loans/active", memberToken)
	require.Equal(t, 0, activeResp.Code, "查询在借列表失败")
	var active []LoanData
	MustUnmarshal(t, activeResp.Data, &active)
	require.Len(t, active, 1, "在借列表应该有1条")
	assert.Equal(t, borrow.LoanNo, active[0].LoanNo)

	// 4. 还书
	returnResp := PostJSON(t, BaseURL+"/loans/return", map[string]string{"loan_no": borrow.LoanNo}, memberToken)
	require.Equal(t, 0, returnResp.Code, "还书失败: %s", returnResp.Message)
	var ret ReturnData
	MustUnmarshal(t, returnResp.Data, &ret)
	assert.Equal(t, borrow.LoanNo, ret.LoanNo)
	assert.False(t, ret.Overdue, "按期归还不应该逾期")

	// 5. 归还后恢复可借
	availResp = GetJSON(t, BaseURL+"/books/"+bookID+"/availability", "")
	MustUnmarshal(t, availResp.Data, &avail)
	assert.True(t, avail.Available, "归还后应该恢复可借")

	// 6. 重复归还被拒
	returnResp = PostJSON(t, BaseURL+"/loans/return", map[string]string{"loan_no": borrow.LoanNo}, memberToken)
	assert.NotEqual(t, 0, returnResp.Code, "重复归还应该失败")
}

// TestBorrowLimit 测试在借上限
func TestBorrowLimit(t *testing.T) {
	adminToken := LoginAdmin(t)
	_, memberToken := RegisterTestMember(t, "limit")
	bookID := newLendingBook(t, adminToken, 5)

	// 借满3本
	for i := 0; i < 3; i++ {
		resp := PostJSON(t, BaseURL+"/loans", map[string]string{"book_id": bookID}, memberToken)
		require.Equal(t, 0, resp.Code, "第%d次借书应该成功: %s", i+1, resp.Message)
	}

	// 第4次被拒
	resp := PostJSON(t, BaseURL+"/loans", map[string]string{"book_id": bookID}, memberToken)
	assert.NotEqual(t, 0, resp.Code, "超出在借上限应该失败")

	// 在借数应该是3
	countResp := GetJSON(t, BaseURL+"/loans/active/count", memberToken)
	require.Equal(t, 0, countResp.Code, "查询在借数失败")
	var count struct {
		Count int64 `json:"count"`
	}
	MustUnmarshal(t, countResp.Data, &count)
	assert.Equal(t, int64(3), count.Count, "在借数应该是3")

	// 归还一本后可以再借
	activeResp := GetJSON(t, BaseURL+"/loans/active", memberToken)
	var active []LoanData
	MustUnmarshal(t, activeResp.Data, &active)
	require.NotEmpty(t, active, "应该有在借记录")

	returnResp := PostJSON(t, BaseURL+"/loans/return", map[string]string{"loan_no": active[0].LoanNo}, memberToken)
	require.Equal(t, 0, returnResp.Code, "归还失败: %s", returnResp.Message)

	resp = PostJSON(t, BaseURL+"/loans", map[string]string{"book_id": bookID}, memberToken)
	assert.Equal(t, 0, resp.Code, "归还后应该可以再借: %s", resp.Message)
}

// TestReturnByBook 测试按图书编号归还
func TestReturnByBook(t *testing.T) {
	adminToken := LoginAdmin(t)
	_, memberToken := RegisterTestMember(t, "by_book")
	bookID := newLendingBook(t, adminToken, 2)

	// 没有在借记录时按书归还失败
	resp := PostJSON(t, BaseURL+"/loans/return", map[string]string{"book_id": bookID}, memberToken)
	assert.NotEqual(t, 0, resp.Code, "没有在借记录时按书归还应该失败")

	// 借1本后按书归还
	borrowResp := PostJSON(t, BaseURL+"/loans", map[string]string{"book_id": bookID}, memberToken)
	require.Equal(t, 0, borrowResp.Code, "借书失败: %s", borrowResp.Message)

	resp = PostJSON(t, BaseURL+"/loans/return", map[string]string{"book_id": bookID}, memberToken)
	require.Equal(t, 0, resp.Code, "按书归还失败: %s", resp.Message)

	// loan_no和book_id都不传
	resp = PostJSON(t, BaseURL+"/loans/return", map[string]string{}, memberToken)
	assert.NotEqual(t, 0, resp.Code, "loan_no和book_id都不传应该失败")
}

// TestReturnOtherMembersLoan 测试不能归还他人的借阅
func TestReturnOtherMembersLoan(t *testing.T) {
	adminToken := LoginAdmin(t)
	_, aliceToken := RegisterTestMember(t, "alice")
	_, bobToken := RegisterTestMember(t, "bob")
	bookID := newLendingBook(t, adminToken, 1)

	borrowResp := PostJSON(t, BaseURL+"/loans", map[string]string{"book_id": bookID}, aliceToken)
	require.Equal(t, 0, borrowResp.Code, "借书失败: %s", borrowResp.Message)
	var borrow BorrowData
	MustUnmarshal(t, borrowResp.Data, &borrow)

	resp := PostJSON(t, BaseURL+"/loans/return", map[string]string{"loan_no": borrow.LoanNo}, bobToken)
	assert.NotEqual(t, 0, resp.Code, "归还他人借阅应该失败")
}

// TestConcurrentBorrow 测试并发借书不超卖
// 2个副本、5个读者同时借：最多2人成功，副本不会被借给两个人
func TestConcurrentBorrow(t *testing.T) {
	adminToken := LoginAdmin(t)
	bookID := newLendingBook(t, adminToken, 2)

	const workers = 5
	tokens := make([]string, workers)
	for i := 0; i < workers; i++ {
		_, tokens[i] = RegisterTestMember(t, fmt.Sprintf("racer%d", i))
	}

	results := make(chan int, workers)
	for i := 0; i < workers; i++ {
		go func(token string) {
			resp := PostJSON(t, BaseURL+"/loans", map[string]string{"book_id": bookID}, token)
			results <- resp.Code
		}(tokens[i])
	}

	succeeded := 0
	for i := 0; i < workers; i++ {
		if <-results == 0 {
			succeeded++
		}
	}
	assert.Equal(t, 2, succeeded, "2个副本应该恰好2人借到")

	// 统计核对：2本借出、0本可借
	statsResp := GetJSON(t, BaseURL+"/books/"+bookID+"/stats", "")
	require.Equal(t, 0, statsResp.Code, "查询统计失败")
	var stats StatsData
	MustUnmarshal(t, statsResp.Data, &stats)
	assert.Equal(t, int64(2), stats.Total, "副本总数应该是2")
	assert.Equal(t, int64(2), stats.Borrowed, "借出数应该是2")
	assert.Equal(t, int64(0), stats.Available, "可借数应该是0")
}

// TestLoanHistory 测试借阅历史
func TestLoanHistory(t *testing.T) {
	adminToken := LoginAdmin(t)
	_, memberToken := RegisterTestMember(t, "history")
	bookID := newLendingBook(t, adminToken, 1)

	// 借还2轮，产生2条历史
	for i := 0; i < 2; i++ {
		borrowResp := PostJSON(t, BaseURL+"/loans", map[string]string{"book_id": bookID}, memberToken)
		require.Equal(t, 0, borrowResp.Code, "借书失败: %s", borrowResp.Message)
		var borrow BorrowData
		MustUnmarshal(t, borrowResp.Data, &borrow)

		returnResp := PostJSON(t, BaseURL+"/loans/return", map[string]string{"loan_no": borrow.LoanNo}, memberToken)
		require.Equal(t, 0, returnResp.Code, "还书失败: %s", returnResp.Message)
	}

	resp := GetJSON(t, BaseURL+"/loans/history?page=1&page_size=10", memberToken)
	require.Equal(t, 0, resp.Code, "查询历史失败: %s", resp.Message)

	var page struct {
		List  []LoanData `json:"list"`
		Total int64      `json:"total"`
	}
	MustUnmarshal(t, resp.Data, &page)
	assert.Equal(t, int64(2), page.Total, "历史总数应该是2")
	for _, l := range page.List {
		assert.NotEmpty(t, l.ReturnedAt, "历史记录应该都已归还")
	}
}
