package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/ingestvault/pkg/internal/query"
	"github.com/yeisme/ingestvault/pkg/internal/service"
	"github.com/yeisme/ingestvault/pkg/internal/types"
	"github.com/yeisme/ingestvault/pkg/log"
	"github.com/yeisme/ingestvault/pkg/rule"
)

// ListIngestProcesses 分页列出摄取流程.
//
//	@Summary		列出摄取流程
//	@Description	分页列出摄取流程，支持列级过滤（column=value 或 column=op:value），标签与来源随行返回
//	@Tags			摄取流程
//	@Produce		json
//	@Param			page		query		int							false	"页码（从0开始）"
//	@Param			page_size	query		int							false	"页大小，默认50，上限200"
//	@Success		200			{array}		types.IngestProcessResponse	"摄取流程列表"
//	@Failure		400			{object}	map[string]string			"过滤参数错误"
//	@Router			/api/v1/processes [get]
func ListIngestProcesses(c *gin.Context) {
	l := log.Logger()

	q, err := query.Parse(c.Request.URL.Query(), service.ListFilterColumns)
	if err != nil {
		l.Warn().Err(err).Msg("invalid list query")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewIngestService(c.Request.Context())

	res, err := svc.List(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, *l, err)

		return
	}

	c.JSON(http.StatusOK, res)
}

// GetIngestProcess 按 id 返回单个摄取流程.
//
//	@Summary		获取摄取流程
//	@Tags			摄取流程
//	@Produce		json
//	@Param			id	path		int							true	"摄取流程 id"
//	@Success		200	{object}	types.IngestProcessResponse	"摄取流程"
//	@Failure		404	{object}	map[string]string			"流程不存在"
//	@Router			/api/v1/processes/{id} [get]
func GetIngestProcess(c *gin.Context) {
	l := log.Logger()

	id, ok := parseProcessID(c)
	if !ok {
		return
	}

	svc := service.NewIngestService(c.Request.Context())

	res, err := svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, *l, err)

		return
	}

	c.JSON(http.StatusOK, res)
}

// CreateIngestProcess 登记一个新的摄取流程.
//
//	@Summary		创建摄取流程
//	@Description	在同一事务中创建空对象组与摄取流程本体，初始标签一并写入，响应附带来源精简视图
//	@Tags			摄取流程
//	@Accept			json
//	@Produce		json
//	@Param			process	body		types.CreateIngestProcessRequest	true	"创建请求"
//	@Success		201		{object}	types.IngestProcessResponse			"创建完成的摄取流程"
//	@Failure		403		{object}	map[string]string					"访问被拒绝"
//	@Failure		422		{object}	map[string]string					"source_id 不存在"
//	@Router			/api/v1/processes [post]
func CreateIngestProcess(c *gin.Context) {
	l := log.Logger()

	var req types.CreateIngestProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid create request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewIngestService(c.Request.Context())

	res, err := svc.Create(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, *l, err)

		return
	}

	c.JSON(http.StatusCreated, res)
}

// PatchIngestProcess 部分更新摄取流程.
//
//	@Summary		部分更新摄取流程
//	@Description	只更新请求体中显式出现的字段（exclude-unset 语义），省略的字段保持不变
//	@Tags			摄取流程
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"摄取流程 id"
//	@Param			patch	body		types.PatchIngestProcessRequest	true	"更新字段集合"
//	@Success		200		{object}	types.IngestProcessResponse		"更新后的摄取流程"
//	@Failure		404		{object}	map[string]string				"流程不存在"
//	@Router			/api/v1/processes/{id} [patch]
func PatchIngestProcess(c *gin.Context) {
	l := log.Logger()

	id, ok := parseProcessID(c)
	if !ok {
		return
	}

	var req types.PatchIngestProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid patch request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewIngestService(c.Request.Context())

	res, err := svc.Patch(c.Request.Context(), id, &req)
	if err != nil {
		respondServiceError(c, *l, err)

		return
	}

	c.JSON(http.StatusOK, res)
}

// AddIngestTag 为摄取流程追加标签.
//
//	@Summary		添加标签
//	@Description	追加一个标签并返回提交后的完整标签列表
//	@Tags			标签
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int					true	"摄取流程 id"
//	@Param			tag	body		types.TagRequest	true	"标签"
//	@Success		200	{object}	map[string][]string	"当前标签列表"
//	@Failure		404	{object}	map[string]string	"流程不存在"
//	@Router			/api/v1/processes/{id}/tags [post]
func AddIngestTag(c *gin.Context) {
	l := log.Logger()

	id, ok := parseProcessID(c)
	if !ok {
		return
	}

	var req types.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid tag request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewIngestService(c.Request.Context())

	tags, err := svc.AddTag(c.Request.Context(), id, req.Tag)
	if err != nil {
		respondServiceError(c, *l, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// DeleteIngestTag 按值删除标签.
//
//	@Summary		删除标签
//	@Description	删除匹配该值的所有标签行（含重复行），删除不存在的标签是 no-op，返回剩余标签列表
//	@Tags			标签
//	@Produce		json
//	@Param			id	path		int					true	"摄取流程 id"
//	@Param			tag	path		string				true	"标签值（精确匹配）"
//	@Success		200	{object}	map[string][]string	"剩余标签列表"
//	@Failure		404	{object}	map[string]string	"流程不存在"
//	@Router			/api/v1/processes/{id}/tags/{tag} [delete]
func DeleteIngestTag(c *gin.Context) {
	l := log.Logger()

	id, ok := parseProcessID(c)
	if !ok {
		return
	}

	tag := c.Param("tag")
	if err := rule.ValidateVar(tag, "required,min=1,max=255"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tag"})

		return
	}

	svc := service.NewIngestService(c.Request.Context())

	tags, err := svc.DeleteTag(c.Request.Context(), id, tag)
	if err != nil {
		respondServiceError(c, *l, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// ListIngestObjects 列出摄取流程产出的对象及限时下载链接.
//
//	@Summary		列出对象与下载链接
//	@Description	列出对象组内全部对象，逐个补全预签名下载链接；任一对象签名失败则整个调用失败
//	@Tags			对象
//	@Produce		json
//	@Param			id	path		int					true	"摄取流程 id"
//	@Success		200	{array}		types.SecureObject	"对象列表"
//	@Failure		404	{object}	map[string]string	"流程不存在"
//	@Failure		502	{object}	map[string]string	"对象存储调用失败"
//	@Router			/api/v1/processes/{id}/objects [get]
func ListIngestObjects(c *gin.Context) {
	l := log.Logger()

	id, ok := parseProcessID(c)
	if !ok {
		return
	}

	svc := service.NewIngestService(c.Request.Context())

	objs, err := svc.ListObjects(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, *l, err)

		return
	}

	c.JSON(http.StatusOK, objs)
}
