package textnorm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"caselaw/internal/domain"
)

func TestParagraphs(t *testing.T) {
	assert.Equal(t, "<p>本院认为</p><p>上诉人</p>", Paragraphs("  本院认为\n\t上诉人 "))
	assert.Equal(t, "", Paragraphs(" \n "))
	assert.Equal(t, "<p>a</p><p>&lt;</p><p>b</p>", Paragraphs("a < b"))
	assert.Equal(t, "<p>a&amp;b</p>", Paragraphs("a&b"))
}

func TestParagraphs_KeepsSourceMarkup(t *testing.T) {
	raw := `<div class="c_header">某某法院 刑事判决书</div> <div>本院认为 被告人</div>`
	assert.Equal(t,
		`<div class="c_header"><p>某某法院</p><p>刑事判决书</p></div><div><p>本院认为</p><p>被告人</p></div>`,
		Paragraphs(raw))
	assert.Equal(t, "<div><p>正文</p></div>", Paragraphs("<!-- x --><div><script>var a = 1</script>正文</div>"))
}

func TestNormalizeCase_SourceMarkup(t *testing.T) {
	c := domain.Case{
		FullText: `<div class="nav">导航</div><div class="c_header">某某法院 刑事判决书</div> <div>本院认为 被告人</div>`,
	}
	NormalizeCase(&c)

	assert.Equal(t, "导航 某某法院 刑事判决书 本院认为 被告人", Preview(c.FullText, 240))
	assert.NotContains(t, StripMarkup(c.FullText), "c_header")

	body := ArticleBody(c.FullText)
	assert.True(t, strings.HasPrefix(body, `<div class="c_header">`), body)
	assert.Equal(t, "某某法院 刑事判决书 本院认为 被告人", Preview(body, 240))
}

func TestStripMarkup(t *testing.T) {
	assert.Equal(t, "本院认为\n上诉人", StripMarkup("<p>本院认为</p><p>上诉人</p>"))
	assert.Equal(t, "a&b", StripMarkup(Paragraphs("a&b")))
	assert.Equal(t, "plain text", StripMarkup("plain text"))
	assert.Equal(t, "x y", StripMarkup(`<span class="c">x</span> <b>y</b>`))
	assert.Equal(t, "line\nnext", StripMarkup("line<br/>next"))
	assert.Equal(t, "", StripMarkup(""))
}

func TestStripMarkupRoundTrip(t *testing.T) {
	raw := "原告 张三 诉 被告 李四 & 王五"
	stripped := StripMarkup(Paragraphs(raw))
	assert.Equal(t, "原告\n张三\n诉\n被告\n李四\n&\n王五", stripped)
}

func TestPreview(t *testing.T) {
	markup := Paragraphs("一二三 四五六 七八九")
	assert.Equal(t, "一二三 四", Preview(markup, 5))
	assert.Equal(t, "一二三 四五六 七八九", Preview(markup, 240))
	assert.Equal(t, "", Preview(markup, 0))
}

func TestSourceRef(t *testing.T) {
	url := "https://wenshu.court.gov.cn/website/wenshu/181107ANFZ0BXSK4/index.html?docId=964fc681687d4e47a0a9ace500096dde"
	assert.Equal(t, "964fc681687d4e47a0a9ace500096dde", SourceRef(url))
	assert.Equal(t, "b", SourceRef("a=x=b"))
	assert.Equal(t, "", SourceRef("no-separator"))
	assert.Equal(t, "", SourceRef("ends="))
}

func TestDisplayList(t *testing.T) {
	assert.Equal(t, "张三，李四", DisplayList(",张三,李四,"))
	assert.Equal(t, "", DisplayList(",,"))
	assert.Equal(t, "单一", DisplayList("单一"))
}

func TestFoldWidth(t *testing.T) {
	assert.Equal(t, "ABC123(2019)", FoldWidth("ＡＢＣ１２３（２０１９）"))
	assert.Equal(t, "民事", FoldWidth("民事"))
}

func TestSimplified(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"買賣合同糾紛", "买卖合同纠纷"},
		{"最高人民法院", "最高人民法院"},
		{"ATM 2020", "ATM 2020"},
		{"", ""},
	}
	for _, tt := range tests {
		got, err := Simplified(tt.in)
		if assert.NoError(t, err, tt.in) {
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestArticleBody(t *testing.T) {
	markup := `<div class="nav">menu</div><div class="c_header">标题</div><p>正文</p>`
	assert.Equal(t, `<div class="c_header">标题</div><p>正文</p>`, ArticleBody(markup))
	assert.Equal(t, "<p>x</p>", ArticleBody("<p>x</p>"))
	assert.Equal(t, "c_header", ArticleBody("c_header"))
}

func TestNormalizeCase(t *testing.T) {
	c := domain.Case{
		DocID:    " https://host/x?docId=abc ",
		CaseName: "  名称 ",
		FullText: "第一段 第二段",
	}
	NormalizeCase(&c)
	assert.Equal(t, "abc", c.DocID)
	assert.Equal(t, "名称", c.CaseName)
	assert.Equal(t, "<p>第一段</p><p>第二段</p>", c.FullText)
}

func TestDisplayCase(t *testing.T) {
	c := DisplayCase(domain.Case{Parties: "甲,乙,", LegalBasis: ",法条一,法条二", FullText: "<i>x</i><p class=\"c_header\">h</p>"})
	assert.Equal(t, "甲，乙", c.Parties)
	assert.Equal(t, "法条一，法条二", c.LegalBasis)
	assert.Equal(t, "<p class=\"c_header\">h</p>", c.FullText)
}
