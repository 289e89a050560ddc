package services

import (
	"bytes"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"strings"

	log "github.com/sirupsen/logrus"

	"inkwell/internal/config"
)

// ReplyMailer mirrors reply notifications to e-mail.
type ReplyMailer interface {
	SendReplyNotification(email string, data ReplyMail)
}

type ReplyMail struct {
	Replier         string
	PostTitle       string
	ReplyContent    string
	OriginalContent string
	PostLink        string
}

var replyMailTemplate = template.Must(template.New("reply").Parse(`<p>{{.Replier}} 回复了你在《{{.PostTitle}}》下的评论：</p>
<blockquote>{{.ReplyContent}}</blockquote>
<p style="color:#888">你的评论：{{.OriginalContent}}</p>
<p><a href="{{.PostLink}}">查看完整讨论</a></p>`))

type MailService struct {
	host     string
	port     string
	username string
	password string
	from     string
	enabled  bool
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailService(cfg *config.Config) *MailService {
	enabled := cfg.MailEnabled()
	if !enabled {
		log.Warn("[mail] MailService disabled: missing SMTP configuration")
	}

	return &MailService{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPass,
		from:     cfg.SMTPFrom,
		enabled:  enabled,
		send:     smtp.SendMail,
	}
}

func (s *MailService) Enabled() bool { return s.enabled }

var headerBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// encodeSubject 去掉换行防止头注入，非 ASCII 按 RFC 2047 编码
func encodeSubject(subject string) string {
	return mime.QEncoding.Encode("utf-8", headerBreaks.Replace(subject))
}

func (s *MailService) buildMessage(to []string, subject, body string) []byte {
	return []byte(fmt.Sprintf("To: %s\r\n"+
		"From: Inkwell <%s>\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
		"\r\n%s", strings.Join(to, ","), s.from, encodeSubject(subject), body))
}

// sendAsync 异步发送，失败只记录日志，不影响主流程
func (s *MailService) sendAsync(to []string, subject, body string) {
	if !s.enabled {
		return
	}

	go func() {
		auth := smtp.PlainAuth("", s.username, s.password, s.host)
		addr := fmt.Sprintf("%s:%s", s.host, s.port)

		if err := s.send(addr, auth, s.from, to, s.buildMessage(to, subject, body)); err != nil {
			log.WithError(err).Errorf("[mail] failed to send email to %v", to)
			return
		}
		log.Infof("[mail] email sent to %v: %s", to, subject)
	}()
}

func (s *MailService) SendReplyNotification(email string, data ReplyMail) {
	if email == "" {
		return
	}
	var buf bytes.Buffer
	if err := replyMailTemplate.Execute(&buf, data); err != nil {
		log.WithError(err).Error("[mail] failed to render reply notification")
		return
	}
	s.sendAsync([]string{email}, "💬 "+data.Replier+" 回复了你在《"+data.PostTitle+"》下的评论", buf.String())
}
