// Package present converts domain values into JSON response bodies.
package present

import (
	"github.com/gin-gonic/gin"
	"github.com/syariahos/syariahos-api/internal/accounts"
	"github.com/syariahos/syariahos-api/internal/activity"
	"github.com/syariahos/syariahos-api/internal/dashboard"
	"github.com/syariahos/syariahos-api/internal/directory"
	"github.com/syariahos/syariahos-api/internal/models"
	"github.com/syariahos/syariahos-api/internal/stats"
	"github.com/syariahos/syariahos-api/internal/tasks"
)

// User renders an account without secrets.
func User(u models.User) gin.H {
	return gin.H{
		"id":                 u.ID,
		"name":               u.Name,
		"email":              u.Email,
		"role":               u.Role,
		"theme":              u.Theme,
		"zakat_rate":         u.ZakatRate,
		"contract_type":      u.ContractType,
		"calculation_method": u.CalculationMethod,
		"profile_picture":    u.ProfilePicture,
		"two_factor_enabled": u.TOTPEnabled,
		"created_at":         u.CreatedAt,
		"updated_at":         u.UpdatedAt,
	}
}

// UserPage renders an admin user listing.
func UserPage(page accounts.UserPage) gin.H {
	items := make([]gin.H, 0, len(page.Items))
	for _, u := range page.Items {
		items = append(items, User(u))
	}
	return gin.H{
		"data": items,
		"meta": pageMeta(page.Total, page.Page, page.PerPage),
	}
}

// Task renders a task with its API cycle value.
func Task(t models.Task) gin.H {
	return gin.H{
		"id":                  t.ID,
		"text":                t.Text,
		"category":            t.Category,
		"completed":           t.Completed,
		"progress":            t.Progress,
		"has_limit":           t.HasLimit,
		"current_value":       t.CurrentValue,
		"target_value":        t.TargetValue,
		"unit":                t.Unit,
		"reset_cycle":         tasks.CycleLabel(t.ResetCycle),
		"increment_per_check": t.IncrementPerCheck,
		"increment_value":     t.IncrementValue,
		"last_reset_at":       t.LastResetAt,
		"created_at":          t.CreatedAt,
		"updated_at":          t.UpdatedAt,
	}
}

// Tasks renders a list of tasks.
func Tasks(rows []models.Task) []gin.H {
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, Task(row))
	}
	return out
}

// History renders one progress event.
func History(h models.TaskHistory) gin.H {
	return gin.H{
		"id":         h.ID,
		"task_id":    h.TaskID,
		"value":      h.Value,
		"note":       h.Note,
		"created_at": h.CreatedAt,
	}
}

// Histories renders progress events.
func Histories(rows []models.TaskHistory) []gin.H {
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, History(row))
	}
	return out
}

// Category renders a category.
func Category(c models.Category) gin.H {
	return gin.H{
		"id":         c.ID,
		"name":       c.Name,
		"color":      c.Color,
		"created_at": c.CreatedAt,
	}
}

// Categories renders categories.
func Categories(rows []models.Category) []gin.H {
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, Category(row))
	}
	return out
}

// DirectoryItem renders a single node without children.
func DirectoryItem(item models.DirectoryItem) gin.H {
	out := gin.H{
		"id":         item.ID,
		"parent_id":  item.ParentID,
		"name":       item.Name,
		"type":       item.Type,
		"sort_order": item.SortOrder,
		"content":    nil,
		"created_at": item.CreatedAt,
		"updated_at": item.UpdatedAt,
	}
	if item.Content != nil {
		content := item.Content.Data()
		out["content"] = gin.H{
			"dalil":       content.Dalil,
			"source":      content.Source,
			"explanation": content.Explanation,
		}
	}
	return out
}

// Tree renders a directory forest.
func Tree(nodes []*directory.Node) []gin.H {
	out := make([]gin.H, 0, len(nodes))
	for _, node := range nodes {
		rendered := DirectoryItem(node.Item)
		rendered["children"] = Tree(node.Children)
		out = append(out, rendered)
	}
	return out
}

// Tool renders a catalog entry.
func Tool(t models.Tool) gin.H {
	sources := make([]gin.H, 0, len(t.Sources))
	for _, source := range t.Sources {
		sources = append(sources, gin.H{
			"title":     source.Title,
			"reference": source.Reference,
			"url":       source.URL,
		})
	}
	return gin.H{
		"id":                  t.ID,
		"name":                t.Name,
		"category":            t.Category,
		"description":         t.Description,
		"inputs":              nonNil(t.Inputs),
		"outputs":             nonNil(t.Outputs),
		"benefits":            nonNil(t.Benefits),
		"sharia_basis":        t.ShariaBasis,
		"link":                t.Link,
		"related_directories": nonNil(t.RelatedDirectories),
		"sources":             sources,
		"created_at":          t.CreatedAt,
		"updated_at":          t.UpdatedAt,
	}
}

// Tools renders catalog entries.
func Tools(rows []models.Tool) []gin.H {
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, Tool(row))
	}
	return out
}

// ActivityPage renders the admin log viewer page.
func ActivityPage(page activity.Page) gin.H {
	items := make([]gin.H, 0, len(page.Items))
	for _, row := range page.Items {
		var actor any
		if row.User != nil {
			actor = gin.H{"id": row.User.ID, "name": row.User.Name, "email": row.User.Email}
		}
		items = append(items, gin.H{
			"id":           row.ID,
			"user_id":      row.UserID,
			"user":         actor,
			"action":       row.Action,
			"subject_type": row.SubjectType,
			"subject_id":   row.SubjectID,
			"metadata":     row.Metadata,
			"created_at":   row.CreatedAt,
		})
	}
	return gin.H{
		"data": items,
		"meta": pageMeta(page.Total, page.Page, page.PerPage),
	}
}

// Summary renders the dashboard.
func Summary(s dashboard.Summary) gin.H {
	goals := make([]gin.H, 0, len(s.Goals))
	for _, g := range s.Goals {
		goals = append(goals, gin.H{
			"task_id":       g.TaskID,
			"text":          g.Text,
			"category":      g.Category,
			"current_value": g.CurrentValue,
			"target_value":  g.TargetValue,
			"unit":          g.Unit,
			"progress":      g.Progress,
			"completed":     g.Completed,
		})
	}
	categories := make([]gin.H, 0, len(s.Categories))
	for _, c := range s.Categories {
		categories = append(categories, gin.H{
			"category":  c.Category,
			"total":     c.Total,
			"completed": c.Completed,
		})
	}
	trend := make([]gin.H, 0, len(s.Trend))
	for _, p := range s.Trend {
		trend = append(trend, gin.H{"date": p.Date, "value": p.Value, "events": p.Events})
	}
	return gin.H{
		"kpi": gin.H{
			"total_tasks":      s.KPI.TotalTasks,
			"completed_tasks":  s.KPI.CompletedTasks,
			"completion_rate":  s.KPI.CompletionRate,
			"average_progress": s.KPI.AverageProgress,
			"active_recurring": s.KPI.ActiveRecurring,
			"goals_completed":  s.KPI.GoalsCompleted,
		},
		"goals":      goals,
		"categories": categories,
		"trend":      trend,
	}
}

// Platform renders admin stats.
func Platform(p stats.Platform) gin.H {
	top := make([]gin.H, 0, len(p.TopActions))
	for _, a := range p.TopActions {
		top = append(top, gin.H{"action": a.Action, "count": a.Count})
	}
	return gin.H{
		"total_users":     p.TotalUsers,
		"admin_users":     p.AdminUsers,
		"new_users":       p.NewUsers,
		"total_tasks":     p.TotalTasks,
		"completed_tasks": p.CompletedTasks,
		"recurring_tasks": p.RecurringTasks,
		"completion_rate": p.CompletionRate,
		"directory_items": p.DirectoryItems,
		"total_tools":     p.TotalTools,
		"activity_logs":   p.ActivityLogs,
		"recent_activity": p.RecentActivity,
		"top_actions":     top,
		"generated_at":    p.GeneratedAt,
	}
}

func pageMeta(total int64, page, perPage int) gin.H {
	lastPage := 1
	if perPage > 0 && total > 0 {
		lastPage = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return gin.H{
		"total":        total,
		"current_page": page,
		"per_page":     perPage,
		"last_page":    lastPage,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
