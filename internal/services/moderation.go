package services

import (
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"inkwell/internal/apperr"
	"inkwell/internal/auth"
)

// MaxCommentRunes 评论/回复最大长度
const MaxCommentRunes = 2000

// Admission is what the gate decided for a new comment or reply.
type Admission struct {
	Content    string
	IsApproved bool
}

// ModerationGate decides who may write and whether a new row starts approved.
type ModerationGate struct {
	policy *bluemonday.Policy
	now    func() time.Time
}

func NewModerationGate() *ModerationGate {
	return &ModerationGate{
		policy: bluemonday.StrictPolicy(),
		now:    time.Now,
	}
}

// Admit checks the author and cleans the content. Admin content is self-published;
// everything else waits in the moderation queue.
func (g *ModerationGate) Admit(s auth.Session, content string) (Admission, error) {
	if err := g.CheckAuthor(s); err != nil {
		return Admission{}, err
	}
	cleaned, err := g.Clean(content)
	if err != nil {
		return Admission{}, err
	}
	return Admission{Content: cleaned, IsApproved: s.IsAdmin()}, nil
}

// CheckAuthor rejects anonymous, banned and currently muted sessions.
func (g *ModerationGate) CheckAuthor(s auth.Session) error {
	now := g.now()
	switch {
	case !s.IsAuthenticated():
		return apperr.Unauthenticated("请先登录")
	case s.IsBanned(now):
		return apperr.PermissionDenied("账号已被封禁")
	case s.IsMuted(now):
		return apperr.PermissionDenied("您已被禁言，暂时无法发言")
	}
	return nil
}

// maxCleanPasses 实体编码嵌套层数上限
const maxCleanPasses = 8

// Clean strips markup and enforces the length limit. The result is plain text and
// cleaning it again returns it unchanged.
func (g *ModerationGate) Clean(content string) (string, error) {
	text, ok := g.plainText(content)
	if !ok {
		return "", apperr.Validation("内容格式无效")
	}
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return "", apperr.Validation("内容不能为空")
	}
	if utf8.RuneCountInString(cleaned) > MaxCommentRunes {
		return "", apperr.Validation("内容不能超过 2000 字")
	}
	return cleaned, nil
}

// plainText 反复去标签并还原实体，直到结果不再变化。
// StrictPolicy 会把 & < > 转义，只还原一次的话 &lt;img&gt; 会变回真正的标签
func (g *ModerationGate) plainText(content string) (string, bool) {
	text := content
	for i := 0; i < maxCleanPasses; i++ {
		next := html.UnescapeString(g.policy.Sanitize(text))
		if next == text {
			return text, true
		}
		text = next
	}
	return "", false
}
