package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio/internal/repository"
)

// ProfileHandler 处理站点主人信息的读取与修改。
type ProfileHandler struct {
	profiles *repository.Profiles
}

// NewProfileHandler 构造 ProfileHandler。
func NewProfileHandler(profiles *repository.Profiles) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

type profileRequest struct {
	Name      string  `json:"name" binding:"required,max=255"`
	Title     string  `json:"title" binding:"required,max=255"`
	Bio       string  `json:"bio"`
	Email     string  `json:"email" binding:"required,email,max=255"`
	Github    string  `json:"github" binding:"max=255"`
	Linkedin  string  `json:"linkedin" binding:"max=255"`
	Twitter   string  `json:"twitter" binding:"max=255"`
	ResumeURL *string `json:"resume_url" binding:"omitempty,max=512"`
	ImageURL  *string `json:"image_url" binding:"omitempty,max=512"`
}

// Get 返回唯一的个人资料记录。
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Update 覆盖文本字段；未提供的 URL 字段保留原值。
func (h *ProfileHandler) Update(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	profile, err := h.profiles.Update(c.Request.Context(), repository.ProfileFields{
		Name:      req.Name,
		Title:     req.Title,
		Bio:       req.Bio,
		Email:     req.Email,
		Github:    req.Github,
		Linkedin:  req.Linkedin,
		Twitter:   req.Twitter,
		ResumeURL: req.ResumeURL,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
