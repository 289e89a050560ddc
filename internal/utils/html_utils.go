package utils

import (
	"html/template"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const embedAllow = "accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture"

// EnhanceHTMLContent 为图片增加懒加载和防盗链属性，并把单独成段的视频链接换成播放器
func EnhanceHTMLContent(htmlStr string) template.HTML {
	if htmlStr == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return template.HTML(htmlStr)
	}

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("referrerpolicy", "no-referrer")
		s.SetAttr("loading", "lazy")
		s.SetAttr("decoding", "async")
	})

	doc.Find("p").Each(func(i int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if !strings.HasPrefix(text, "http") || strings.Contains(text, " ") {
			return
		}
		if src := videoEmbedURL(text); src != "" {
			s.ReplaceWithHtml(`<div class="video-container"><iframe src="` + template.HTMLEscapeString(src) +
				`" frameborder="0" allowfullscreen allow="` + embedAllow + `"></iframe></div>`)
		}
	})

	// goquery 会补全 html/body，只取 body 内容
	out, _ := doc.Find("body").Html()
	if out == "" {
		out, _ = doc.Html()
	}
	return template.HTML(out)
}

// videoEmbedURL returns the player URL for a Bilibili or YouTube link, or "".
func videoEmbedURL(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(u.Host, "www.")
	switch {
	case host == "bilibili.com" && strings.HasPrefix(u.Path, "/video/"):
		bvid := strings.Trim(strings.TrimPrefix(u.Path, "/video/"), "/")
		if bvid == "" {
			return ""
		}
		return "https://player.bilibili.com/player.html?bvid=" + url.QueryEscape(bvid) + "&high_quality=1&autoplay=0"
	case host == "youtube.com" && u.Path == "/watch":
		if v := u.Query().Get("v"); v != "" {
			return "https://www.youtube.com/embed/" + url.PathEscape(v)
		}
	case host == "youtu.be":
		if v := strings.Trim(u.Path, "/"); v != "" {
			return "https://www.youtube.com/embed/" + url.PathEscape(v)
		}
	}
	return ""
}
