package audit

import (
	"bytes"
	"fmt"
	"strings"

	"tenderaudit/internal/retrieval"
)

const promptVersion = "tenderaudit-qa-v1"

const (
	judgeCompliant    = "compliant"
	judgePartial      = "partially_compliant"
	judgeNonCompliant = "non_compliant"
	judgeInsufficient = "insufficient_evidence"
)

func buildSystemPrompt() string {
	return strings.TrimSpace(`
你是一名严格的招投标合规审核员。依据提供的招标文件要求与投标文件内容，判断投标响应是否满足要求。
只返回符合给定 JSON 结构的内容，不要输出多余的键、markdown 或解释性文字。
判断结论（verdict）只能是：compliant、partially_compliant、non_compliant、insufficient_evidence。
rationale 用一句话给出判断依据（不超过50字）。
只依据给出的材料判断，材料不足时返回 insufficient_evidence，不要猜测。
	`)
}

func buildUserPrompt(question, requirement string, tender, bid []retrieval.Passage) string {
	var buf bytes.Buffer
	buf.WriteString("审核问题：" + question + "\n")
	buf.WriteString("原始要求：" + requirement + "\n\n")
	buf.WriteString("【招标文件】相关段落：\n")
	writePassages(&buf, tender)
	buf.WriteString("\n【投标文件】相关段落：\n")
	writePassages(&buf, bid)
	return buf.String()
}

func writePassages(buf *bytes.Buffer, passages []retrieval.Passage) {
	if len(passages) == 0 {
		buf.WriteString("（未检索到内容）\n")
		return
	}
	for i, p := range passages {
		fmt.Fprintf(buf, "%d. (%s 第%d页) %s\n", i+1, p.Source, p.PageStart, p.Quote)
	}
}

func judgeResponseSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"verdict", "confidence", "rationale"},
		"properties": map[string]any{
			"verdict": map[string]any{
				"type": "string",
				"enum": []any{judgeCompliant, judgePartial, judgeNonCompliant, judgeInsufficient},
			},
			"confidence": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 1,
			},
			"rationale": map[string]any{
				"type": "string",
			},
		},
		"additionalProperties": false,
	}
}
