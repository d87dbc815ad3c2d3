package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"bulletinboard/internal/model"
	"bulletinboard/internal/pagination"
	"bulletinboard/internal/thread"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	authorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	deletedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Italic(true)

	currentPageStyle = lipgloss.NewStyle().
				Bold(true).
				Underline(true)

	postBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)
)

// One terminal column per depth level.
const replyIndent = 2

func renderList(posts []model.PostSummary, pager pagination.Pager) string {
	var b strings.Builder
	if len(posts) == 0 {
		b.WriteString(deletedStyle.Render("No posts yet."))
		b.WriteString("\n")
	}
	for _, p := range posts {
		fmt.Fprintf(&b, "%6d  %s %s\n",
			p.ID,
			titleStyle.Render(p.Title),
			metaStyle.Render(fmt.Sprintf("[%d] %s · %s", p.CommentCount, p.UserName, thread.FormatTime(p.CreatedAt))),
		)
	}

	if pager.Total > 0 {
		b.WriteString("\n")
		parts := make([]string, 0, len(pager.Pages)+2)
		if pager.HasPrev {
			parts = append(parts, "<")
		}
		for _, n := range pager.Pages {
			if n == pager.Current {
				parts = append(parts, currentPageStyle.Render(strconv.Itoa(n)))
			} else {
				parts = append(parts, strconv.Itoa(n))
			}
		}
		if pager.HasNext {
			parts = append(parts, ">")
		}
		b.WriteString(strings.Join(parts, " "))
	}
	return b.String()
}

func renderThread(v thread.View) string {
	var body strings.Builder
	body.WriteString(titleStyle.Render(v.Post.Title))
	body.WriteString("\n")
	body.WriteString(metaStyle.Render(v.Post.CreatedAt))
	body.WriteString("\n\n")
	body.WriteString(strings.Join(v.Post.Lines, "\n"))
	for _, f := range v.Post.Files {
		fmt.Fprintf(&body, "\n%s", metaStyle.Render(fmt.Sprintf("@ %s (%s KB)", f.Name, f.SizeKB)))
	}

	var b strings.Builder
	b.WriteString(postBorderStyle.Render(body.String()))
	b.WriteString("\n\n")

	if v.Empty {
		b.WriteString(deletedStyle.Render(thread.EmptyPlaceholder))
		return b.String()
	}
	for _, row := range v.Rows {
		indent := lipgloss.NewStyle().PaddingLeft(row.Depth * replyIndent)
		var line string
		if row.Deleted {
			line = deletedStyle.Render(row.Text)
		} else {
			line = authorStyle.Render(row.Author) + " " + metaStyle.Render(row.CreatedAt) + "\n" + row.Text
		}
		b.WriteString(indent.Render(line))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
