package render

import (
	"fmt"
	"io"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/olekukonko/tablewriter"

	"github.com/romanzzaa/mod-auth/internal/domain"
)

func statusIcon(s domain.KeyStatus) string {
	switch s {
	case domain.KeyStatusExpired:
		return "🔴"
	case domain.KeyStatusUsed:
		return "🟡"
	default:
		return "🟢"
	}
}

// escape экранирует значение для MarkdownV2. EscapeText не трогает обратный слэш.
func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, strings.ReplaceAll(s, `\`, `\\`))
}

// Text - список ключей для Telegram (MarkdownV2). Ключ моноширинный, копируется по тапу.
func Text(views []domain.KeyView) string {
	if len(views) == 0 {
		return escape(domain.EmptyListText)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔑 *Ключи \\(%d\\):*\n\n", len(views)))

	for _, v := range views {
		sb.WriteString(fmt.Sprintf("%s `%s` %s\n", statusIcon(v.Status), escape(v.Key), escape(v.StatusText)))
		sb.WriteString(fmt.Sprintf("├ Создан: %s\n", escape(v.CreatedText)))
		sb.WriteString(fmt.Sprintf("├ Истекает: %s\n", escape(v.ExpiresText)))
		if v.HWID != "" {
			sb.WriteString(fmt.Sprintf("├ HWID: `%s`\n", escape(v.HWID)))
		}
		if v.UsedAtText != "" {
			sb.WriteString(fmt.Sprintf("├ Активирован: %s\n", escape(v.UsedAtText)))
		}
		sb.WriteString(fmt.Sprintf("└ Срок: %s\n\n", escape(v.DurationText)))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// Generated - ответ на генерацию ключа (MarkdownV2)
func Generated(rec domain.KeyRecord, view domain.KeyView) string {
	return fmt.Sprintf("✅ Ключ создан:\n`%s`\n\nСрок: %s\nСоздан: %s",
		escape(rec.Key), escape(view.DurationText), escape(view.CreatedText))
}

// Table - список ключей для терминала
func Table(w io.Writer, views []domain.KeyView) {
	if len(views) == 0 {
		fmt.Fprintln(w, domain.EmptyListText)
		return
	}

	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{
			v.Key, v.StatusText, v.CreatedText, v.ExpiresText, v.DurationText, v.HWID, v.UsedAtText,
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Ключ", "Статус", "Создан", "Истекает", "Срок", "HWID", "Активирован"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	table.AppendBulk(rows)
	table.Render()
}
