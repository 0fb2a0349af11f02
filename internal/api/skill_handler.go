package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio/internal/cache"
	"portfolio/internal/database"
	"portfolio/internal/repository"
)

// SkillHandler 处理技能列表与维护。
type SkillHandler struct {
	skills *repository.Skills
	lists  *cache.Lists
}

// NewSkillHandler 构造 SkillHandler。
func NewSkillHandler(skills *repository.Skills, lists *cache.Lists) *SkillHandler {
	return &SkillHandler{skills: skills, lists: lists}
}

type skillRequest struct {
	Name         string `json:"name" binding:"required,max=255"`
	Category     string `json:"category" binding:"max=128"`
	Proficiency  int    `json:"proficiency" binding:"min=0,max=100"`
	DisplayOrder int    `json:"display_order"`
}

func (r skillRequest) fields() repository.SkillFields {
	return repository.SkillFields{
		Name:         r.Name,
		Category:     r.Category,
		Proficiency:  r.Proficiency,
		DisplayOrder: r.DisplayOrder,
	}
}

// List 按分类与展示顺序返回技能，结果走列表缓存。
func (h *SkillHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	skills, err := cache.Fetch(h.lists, cache.KeySkills, func() ([]database.Skill, error) {
		return h.skills.List(ctx)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, skills)
}

// Create 新增技能。
func (h *SkillHandler) Create(c *gin.Context) {
	var req skillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	skill, err := h.skills.Create(c.Request.Context(), req.fields())
	if err != nil {
		respondError(c, err)
		return
	}
	h.lists.Invalidate(cache.KeySkills)
	c.JSON(http.StatusCreated, skill)
}

// Update 覆盖技能字段。
func (h *SkillHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req skillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	skill, err := h.skills.Update(c.Request.Context(), id, req.fields())
	if err != nil {
		respondError(c, err)
		return
	}
	h.lists.Invalidate(cache.KeySkills)
	c.JSON(http.StatusOK, skill)
}

// Delete 删除技能。
func (h *SkillHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.skills.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.lists.Invalidate(cache.KeySkills)
	message(c, http.StatusOK, "Skill deleted successfully")
}
