package router

import (
	_ "academy-api/docs"
	"academy-api/handler"
	"academy-api/model"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Handlers groups everything the router mounts. Nil handlers leave their
// routes unregistered.
type Handlers struct {
	Auth          *handler.AuthHandler
	Member        *handler.MemberHandler
	Category      *handler.CategoryHandler
	File          *handler.FileHandler
	Notice        *handler.NoticeHandler
	Faq           *handler.FaqHandler
	Apply         *handler.ApplyHandler
	Qna           *handler.QnaHandler
	History       *handler.AdminHistoryHandler
	Actuator      *handler.ActuatorHandler
	SignInLimiter *handler.IPRateLimiter
	// Audit records admin mutations; nil disables the action log.
	Audit *handler.Audit
}

func NewRouter(h Handlers) http.Handler {
	mux := http.NewServeMux()
	e := handler.ErrorHandlingMiddleware

	authed := func(fn http.HandlerFunc) http.Handler {
		return handler.AuthMiddleware(fn)
	}
	admin := func(fn http.Handler) http.Handler {
		return handler.AuthMiddleware(handler.AdminMiddleware(fn))
	}
	audited := func(action model.AdminActionType, target model.AdminTargetType, fn http.Handler) http.Handler {
		return admin(h.Audit.Wrap(action, target, fn))
	}

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	if h.Actuator != nil {
		mux.HandleFunc("GET /actuator/health", h.Actuator.Health)
		mux.HandleFunc("GET /actuator/info", h.Actuator.Info)
		mux.Handle("GET /actuator/prometheus", h.Actuator.Prometheus())
	}

	if h.Auth != nil {
		var signIn http.Handler = e(h.Auth.SignIn)
		if h.SignInLimiter != nil {
			signIn = h.SignInLimiter.Middleware(signIn)
		}
		mux.Handle("POST /api/auth/sign-up", e(h.Auth.SignUp))
		mux.Handle("POST /api/auth/sign-in", signIn)
		mux.Handle("POST /api/auth/refresh", e(h.Auth.Refresh))
		mux.Handle("POST /api/auth/sign-out", e(h.Auth.SignOut))
		mux.Handle("GET /api/auth/me", authed(e(h.Auth.Me)))
		mux.Handle("POST /api/auth/change-password", authed(e(h.Auth.ChangePassword)))
	}

	if h.Member != nil {
		mux.Handle("GET /api/admin/members", admin(e(h.Member.List)))
		mux.Handle("GET /api/admin/members/{id}", admin(e(h.Member.Get)))
		mux.Handle("PATCH /api/admin/members/{id}/status", audited(model.ActionStatus, model.TargetMember, e(h.Member.UpdateStatus)))
		mux.Handle("PATCH /api/admin/members/{id}/lock", audited(model.ActionStatus, model.TargetMember, e(h.Member.UpdateLock)))
		mux.Handle("PATCH /api/admin/members/{id}/role", audited(model.ActionUpdate, model.TargetMember, e(h.Member.UpdateRole)))
		mux.Handle("POST /api/admin/members/{id}/reset-password", audited(model.ActionUpdate, model.TargetMember, e(h.Member.ResetPassword)))
	}

	if h.Category != nil {
		mux.Handle("GET /api/categories/groups/{groupId}", e(h.Category.ListByGroup))

		mux.Handle("GET /api/admin/categories/groups", admin(e(h.Category.ListGroups)))
		mux.Handle("POST /api/admin/categories/groups", audited(model.ActionCreate, model.TargetCategoryGroup, e(h.Category.CreateGroup)))
		mux.Handle("GET /api/admin/categories/groups/{groupId}", admin(e(h.Category.GetGroup)))
		mux.Handle("PUT /api/admin/categories/groups/{groupId}", audited(model.ActionUpdate, model.TargetCategoryGroup, e(h.Category.UpdateGroup)))
		mux.Handle("DELETE /api/admin/categories/groups/{groupId}", audited(model.ActionDelete, model.TargetCategoryGroup, e(h.Category.DeleteGroup)))
		mux.Handle("GET /api/admin/categories/groups/{groupId}/categories", admin(e(h.Category.ListByGroup)))
		mux.Handle("GET /api/admin/categories", admin(e(h.Category.ListAll)))
		mux.Handle("POST /api/admin/categories", audited(model.ActionCreate, model.TargetCategory, e(h.Category.Create)))
		mux.Handle("GET /api/admin/categories/{id}", admin(e(h.Category.Get)))
		mux.Handle("PUT /api/admin/categories/{id}", audited(model.ActionUpdate, model.TargetCategory, e(h.Category.Update)))
		mux.Handle("DELETE /api/admin/categories/{id}", audited(model.ActionDelete, model.TargetCategory, e(h.Category.Delete)))
	}

	if h.File != nil {
		mux.Handle("POST /api/public/files/upload", e(h.File.UploadTemp))
		mux.Handle("POST /api/public/files/upload/base64", e(h.File.UploadBase64))
		mux.Handle("GET /api/public/files/temp/{tempId}", e(h.File.GetTemp))
		mux.Handle("GET /api/public/files/download/{id}", e(h.File.Download))
		mux.Handle("GET /api/public/files/info/{id}", e(h.File.Info))
		mux.Handle("GET /api/public/files/exists/{id}", e(h.File.Exists))

		mux.Handle("DELETE /api/admin/files/{id}", audited(model.ActionDelete, model.TargetFile, e(h.File.Delete)))
		mux.Handle("GET /api/admin/files/temp/stats", admin(e(h.File.CleanupStats)))
		mux.Handle("POST /api/admin/files/temp/cleanup", admin(e(h.File.RunCleanup)))
	}

	if h.Notice != nil {
		mux.Handle("GET /api/notices", e(h.Notice.PublicList))
		mux.Handle("GET /api/notices/important", e(h.Notice.Important))
		mux.Handle("GET /api/notices/recent", e(h.Notice.Recent))
		mux.Handle("GET /api/notices/{id}", e(h.Notice.PublicGet))

		mux.Handle("GET /api/admin/notices", admin(e(h.Notice.AdminList)))
		mux.Handle("POST /api/admin/notices", audited(model.ActionCreate, model.TargetNotice, e(h.Notice.Create)))
		mux.Handle("GET /api/admin/notices/stats", admin(e(h.Notice.Stats)))
		mux.Handle("GET /api/admin/notices/{id}", admin(e(h.Notice.AdminGet)))
		mux.Handle("PUT /api/admin/notices/{id}", audited(model.ActionUpdate, model.TargetNotice, e(h.Notice.Update)))
		mux.Handle("DELETE /api/admin/notices/{id}", audited(model.ActionDelete, model.TargetNotice, e(h.Notice.Delete)))
		mux.Handle("PATCH /api/admin/notices/{id}/important", audited(model.ActionStatus, model.TargetNotice, e(h.Notice.ToggleImportant)))
		mux.Handle("PATCH /api/admin/notices/{id}/published", audited(model.ActionStatus, model.TargetNotice, e(h.Notice.UpdatePublished)))
	}

	if h.Faq != nil {
		mux.Handle("GET /api/faq", e(h.Faq.PublicList))

		mux.Handle("GET /api/admin/faq", admin(e(h.Faq.AdminList)))
		mux.Handle("POST /api/admin/faq", audited(model.ActionCreate, model.TargetFaq, e(h.Faq.Create)))
		mux.Handle("GET /api/admin/faq/stats", admin(e(h.Faq.Stats)))
		mux.Handle("GET /api/admin/faq/{id}", admin(e(h.Faq.Get)))
		mux.Handle("PUT /api/admin/faq/{id}", audited(model.ActionUpdate, model.TargetFaq, e(h.Faq.Update)))
		mux.Handle("DELETE /api/admin/faq/{id}", audited(model.ActionDelete, model.TargetFaq, e(h.Faq.Delete)))
		mux.Handle("PATCH /api/admin/faq/{id}/published", audited(model.ActionStatus, model.TargetFaq, e(h.Faq.SetPublished)))
	}

	if h.Apply != nil {
		mux.Handle("POST /api/apply-applications", e(h.Apply.Submit))

		mux.Handle("GET /api/admin/apply-applications", admin(e(h.Apply.List)))
		mux.Handle("POST /api/admin/apply-applications", audited(model.ActionCreate, model.TargetApplication, e(h.Apply.Create)))
		mux.Handle("GET /api/admin/apply-applications/export", audited(model.ActionExport, model.TargetApplication, e(h.Apply.Export)))
		mux.Handle("GET /api/admin/apply-applications/statistics", admin(e(h.Apply.Statistics)))
		mux.Handle("GET /api/admin/apply-applications/duplicates", admin(e(h.Apply.Duplicates)))
		mux.Handle("GET /api/admin/apply-applications/delayed", admin(e(h.Apply.Delayed)))
		mux.Handle("GET /api/admin/apply-applications/by-assignee", admin(e(h.Apply.ByAssignee)))
		mux.Handle("GET /api/admin/apply-applications/{id}", admin(e(h.Apply.Get)))
		mux.Handle("PUT /api/admin/apply-applications/{id}", audited(model.ActionUpdate, model.TargetApplication, e(h.Apply.Update)))
		mux.Handle("DELETE /api/admin/apply-applications/{id}", audited(model.ActionDelete, model.TargetApplication, e(h.Apply.Delete)))
		mux.Handle("POST /api/admin/apply-applications/{id}/logs", audited(model.ActionCreate, model.TargetApplication, e(h.Apply.AddLog)))
		mux.Handle("PATCH /api/admin/apply-applications/{id}/status", audited(model.ActionStatus, model.TargetApplication, e(h.Apply.ChangeStatus)))
		mux.Handle("PATCH /api/admin/apply-applications/{id}/assignee", audited(model.ActionUpdate, model.TargetApplication, e(h.Apply.Assign)))
	}

	if h.Qna != nil {
		mux.Handle("GET /api/qna/questions", e(h.Qna.PublicList))
		mux.Handle("POST /api/qna/questions", e(h.Qna.Create))
		mux.Handle("GET /api/qna/questions/{id}", e(h.Qna.PublicGet))
		mux.Handle("PUT /api/qna/questions/{id}", e(h.Qna.Update))
		mux.Handle("DELETE /api/qna/questions/{id}", e(h.Qna.Delete))
		mux.Handle("POST /api/qna/questions/{id}/verify-password", e(h.Qna.VerifyPassword))

		mux.Handle("GET /api/admin/qna/questions", admin(e(h.Qna.AdminList)))
		mux.Handle("GET /api/admin/qna/statistics", admin(e(h.Qna.Statistics)))
		mux.Handle("GET /api/admin/qna/questions/{id}", admin(e(h.Qna.AdminGet)))
		mux.Handle("PATCH /api/admin/qna/questions/{id}/status", audited(model.ActionStatus, model.TargetQna, e(h.Qna.UpdateFlags)))
		mux.Handle("DELETE /api/admin/qna/questions/{id}", audited(model.ActionDelete, model.TargetQna, e(h.Qna.AdminDelete)))
		mux.Handle("PUT /api/admin/qna/questions/{id}/answer", audited(model.ActionUpdate, model.TargetQna, e(h.Qna.SaveAnswer)))
		mux.Handle("DELETE /api/admin/qna/questions/{id}/answer", audited(model.ActionDelete, model.TargetQna, e(h.Qna.DeleteAnswer)))
	}

	if h.History != nil {
		mux.Handle("GET /api/admin/history/login", admin(e(h.History.Logins)))
		mux.Handle("GET /api/admin/history/action", admin(e(h.History.Actions)))
		mux.Handle("GET /api/admin/history/action/{id}", admin(e(h.History.Action)))
	}

	return handler.AccessLogMiddleware(handler.RecoverMiddleware(mux))
}
