package digest

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/khobor-mailer/internal/domain"
)

func renderDoc(t *testing.T, d domain.Digest) (string, *goquery.Document) {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render(d)
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)
	return out, doc
}

func fourSections() []domain.Section {
	return []domain.Section{
		{ID: "weather", Heading: "🌤 天氣新聞"},
		{ID: "labour", Heading: "👷‍♂️ 勞工議題"},
		{ID: "ai", Heading: "🤖 AI 工具 / 新技術"},
		{ID: "stocks", Heading: "📈 台股 / 美股動態"},
	}
}

func TestRenderHeadingsInFixedOrder(t *testing.T) {
	for _, cardsInWeather := range []int{0, 1, 5} {
		sections := fourSections()
		for _, a := range arts("w", cardsInWeather) {
			sections[0].Cards = append(sections[0].Cards, domain.Card{Article: a, Summary: "s"})
		}
		d := domain.Digest{Date: time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC), Sections: sections}

		_, doc := renderDoc(t, d)
		var headings []string
		doc.Find("h2").Each(func(_ int, s *goquery.Selection) {
			headings = append(headings, s.Text())
		})

		assert.Equal(t, []string{
			"📩 每日新聞摘要（2026-10-19）",
			"🌤 天氣新聞",
			"👷‍♂️ 勞工議題",
			"🤖 AI 工具 / 新技術",
			"📈 台股 / 美股動態",
		}, headings)
		assert.Equal(t, cardsInWeather, doc.Find("div h3").Length())
	}
}

func TestRenderCardContent(t *testing.T) {
	sections := fourSections()
	sections[2].Cards = []domain.Card{{
		Article: domain.Article{Title: "OpenAI 發表新模型", URL: "https://example.com/news?id=1&src=rss"},
		Summary: "第一行摘要。\n第二行摘要。",
	}}

	out, doc := renderDoc(t, domain.Digest{Date: time.Now(), Sections: sections})

	card := doc.Find("h3").First().Parent()
	assert.Equal(t, "OpenAI 發表新模型", card.Find("h3").Text())
	href, ok := card.Find("a").Attr("href")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/news?id=1&src=rss", href)
	assert.Equal(t, "閱讀全文", card.Find("a").Text())
	assert.Contains(t, card.Text(), "第一行摘要。")
	assert.Equal(t, 1, card.Find("br").Length())
	assert.Contains(t, out, `border:1px solid #ddd; border-radius:10px;`)
}

func TestRenderEscapesSpecialCharacters(t *testing.T) {
	sections := fourSections()
	sections[0].Cards = []domain.Card{{
		Article: domain.Article{Title: `颱風 <強颱> & 豪雨`, URL: "https://example.com/a"},
		Summary: `風雨 & <script>alert(1)</script> 注意`,
	}}

	out, doc := renderDoc(t, domain.Digest{Date: time.Now(), Sections: sections})

	assert.Contains(t, out, "颱風 &lt;強颱&gt; &amp; 豪雨")
	assert.NotContains(t, out, "<強颱>")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "風雨 &amp;")
	assert.Equal(t, `颱風 <強颱> & 豪雨`, doc.Find("h3").Text())
}

func TestRenderRejectsUnsafeLinks(t *testing.T) {
	sections := fourSections()
	sections[1].Cards = []domain.Card{{
		Article: domain.Article{Title: "t", URL: "javascript:alert(1)"},
		Summary: "s",
	}}

	out, _ := renderDoc(t, domain.Digest{Date: time.Now(), Sections: sections})
	assert.NotContains(t, out, "javascript:")
}

func TestRenderSummaryVerbatim(t *testing.T) {
	tests := []struct {
		name    string
		summary string
		want    string
		breaks  int
	}{
		{name: "angle brackets kept as text", summary: "OpenAI 推出 <ChatGPT> 新功能。\n市場反應熱烈。", want: "OpenAI 推出 <ChatGPT> 新功能。市場反應熱烈。", breaks: 1},
		{name: "hash line is not a heading", summary: "# 颱風來襲\n請注意安全。", want: "# 颱風來襲請注意安全。", breaks: 1},
		{name: "numbered lines are not a list", summary: "1. 台股上漲\n2. 美股下跌", want: "1. 台股上漲2. 美股下跌", breaks: 1},
		{name: "markdown emphasis untouched", summary: "台股**大漲**", want: "台股**大漲**"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := fourSections()
			sections[3].Cards = []domain.Card{{Article: domain.Article{Title: "t", URL: "https://example.com"}, Summary: tt.summary}}

			out, doc := renderDoc(t, domain.Digest{Date: time.Now(), Sections: sections})
			summary := doc.Find("h3").First().Next()
			assert.Equal(t, tt.want, summary.Text())
			assert.Equal(t, tt.breaks, summary.Find("br").Length())
			assert.Zero(t, summary.Find("h1, ol, li, strong").Length())
			assert.NotContains(t, out, "raw HTML omitted")
		})
	}
}
