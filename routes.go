package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// =========================
// 💰 Payment Management
// =========================
func PaymentRoutes(r *gin.Engine, app *App) {
	api := r.Group("/api/v1/payments", AuthMiddleware())
	{
		api.GET("", func(c *gin.Context) {
			GetAllPayments(c, app)
		})
		api.POST("", func(c *gin.Context) {
			CreatePaymentHandler(c, app)
		})
		api.PATCH("/:id", func(c *gin.Context) {
			UpdatePaymentHandler(c, app)
		})
		api.DELETE("/:id", func(c *gin.Context) {
			DeletePaymentHandler(c, app)
		})
	}
}

func GetAllPayments(c *gin.Context, app *App) {
	c.JSON(http.StatusOK, gin.H{
		"message": "✅ Payments fetched",
		"data":    app.Payments(),
	})
}

func CreatePaymentHandler(c *gin.Context, app *App) {
	actor, ok := CurrentUser(c, app)
	if !ok {
		return
	}

	var input Payment
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "❌ Invalid JSON payload"})
		return
	}
	if input.HandledBy == "" {
		input.HandledBy = actor.Name
	}

	payment, report, err := app.CreatePayment(actor, input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "❌ " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "✅ Payment recorded",
		"data":    payment,
		"save":    report,
	})
}

func UpdatePaymentHandler(c *gin.Context, app *App) {
	actor, ok := CurrentUser(c, app)
	if !ok {
		return
	}

	var input Payment
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "❌ Invalid JSON payload"})
		return
	}

	payment, report, err := app.UpdatePayment(actor, c.Param("id"), input)
	if err != nil {
		status := http.StatusBadRequest
		if err.Error() == "payment not found" {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "❌ " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "✅ Payment updated",
		"data":    payment,
		"save":    report,
	})
}

func DeletePaymentHandler(c *gin.Context, app *App) {
	actor, ok := CurrentUser(c, app)
	if !ok {
		return
	}

	report, err := app.DeletePayment(actor, c.Param("id"))
	if err != nil {
		status := http.StatusBadRequest
		if err.Error() == "payment not found" {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "❌ " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "✅ Payment deleted",
		"save":    report,
	})
}

// =========================
// 📒 Customer & Supplier Masters
// =========================
func MasterRoutes(r *gin.Engine, app *App) {
	for _, kind := range []string{"customer", "supplier"} {
		kind := kind
		api := r.Group("/api/v1/"+kind+"s", AuthMiddleware())
		{
			api.GET("", func(c *gin.Context) {
				GetAllMasters(c, app, kind)
			})
			api.POST("", func(c *gin.Context) {
				CreateMasterHandler(c, app, kind)
			})
			api.PATCH("/:id", func(c *gin.Context) {
				UpdateMasterHandler(c, app, kind)
			})
			api.DELETE("/:id", func(c *gin.Context) {
				DeleteMasterHandler(c, app, kind)
			})
		}
	}
}

func GetAllMasters(c *gin.Context, app *App, kind string) {
	var data []Master
	if kind == "customer" {
		data = app.Customers()
	} else {
		data = app.Suppliers()
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "✅ Records fetched",
		"data":    data,
	})
}

func CreateMasterHandler(c *gin.Context, app *App, kind string) {
	var input Master
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "❌ Invalid JSON payload"})
		return
	}

	master, report, err := app.CreateMaster(kind, input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "❌ " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "✅ Record added",
		"data":    master,
		"save":    report,
	})
}

func UpdateMasterHandler(c *gin.Context, app *App, kind string) {
	var input Master
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "❌ Invalid JSON payload"})
		return
	}

	master, report, err := app.UpdateMaster(kind, c.Param("id"), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "❌ " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "✅ Record updated",
		"data":    master,
		"save":    report,
	})
}

func DeleteMasterHandler(c *gin.Context, app *App, kind string) {
	report, err := app.DeleteMaster(kind, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "❌ " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "✅ Record deleted",
		"save":    report,
	})
}

// =========================
// 👥 User Management (admin only)
// =========================
func UserRoutes(r *gin.Engine, app *App) {
	api := r.Group("/api/v1/users", AuthMiddleware(), RoleMiddleware("admin"))
	{
		api.GET("", func(c *gin.Context) {
			GetAllUsers(c, app)
		})
		api.POST("", func(c *gin.Context) {
			CreateManagerHandler(c, app)
		})
		api.PATCH("/:id", func(c *gin.Context) {
			UpdateManagerHandler(c, app)
		})
		api.DELETE("/:id", func(c *gin.Context) {
			DeleteUserHandler(c, app)
		})
	}
}

// publicUser hides the stored password from list responses.
type publicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func GetAllUsers(c *gin.Context, app *App) {
	users := app.Users()
	data := make([]publicUser, 0, len(users))
	for _, u := range users {
		data = append(data, publicUser{ID: u.ID, Username: u.Username, Name: u.Name, Role: u.Role})
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "✅ Users fetched",
		"data":    data,
	})
}

type ManagerInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func CreateManagerHandler(c *gin.Context, app *App) {
	var input ManagerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "❌ Invalid JSON payload"})
		return
	}

	user, err := app.CreateManager(input.Username, input.Password, input.Name)
	if err != nil {
		status := http.StatusBadRequest
		if err.Error() == "username already exists" {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": "❌ " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "✅ Manager " + user.Username + " added",
		"data":    publicUser{ID: user.ID, Username: user.Username, Name: user.Name, Role: user.Role},
	})
}

func UpdateManagerHandler(c *gin.Context, app *App) {
	var input ManagerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "❌ Invalid JSON payload"})
		return
	}

	user, err := app.UpdateManager(c.Param("id"), input.Username, input.Password, input.Name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "❌ " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "✅ Manager updated",
		"data":    publicUser{ID: user.ID, Username: user.Username, Name: user.Name, Role: user.Role},
	})
}

func DeleteUserHandler(c *gin.Context, app *App) {
	if err := app.DeleteUser(c.Param("id")); err != nil {
		status := http.StatusBadRequest
		if err.Error() == "user not found" {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "❌ " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "✅ User deleted"})
}

// =========================
// 📊 Dashboard
// =========================
func DashboardRoutes(r *gin.Engine, app *App) {
	api := r.Group("/api/v1", AuthMiddleware())
	{
		api.GET("/dashboard", func(c *gin.Context) {
			GetDashboard(c, app)
		})
		api.GET("/refresh", func(c *gin.Context) {
			app.InitialLoad()
			c.JSON(http.StatusOK, gin.H{"message": "✅ Reloaded from remote store"})
		})
	}
}

func GetDashboard(c *gin.Context, app *App) {
	holdings := make([]gin.H, 0)
	for _, name := range app.AllStaff() {
		holdings = append(holdings, gin.H{
			"name":    name,
			"holding": app.Holding(name).String(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "✅ Dashboard computed",
		"totalIn":      app.TotalIn().String(),
		"totalOut":     app.TotalOut().String(),
		"totalHolding": app.TotalHolding().String(),
		"holdings":     holdings,
	})
}

// =========================
// ☁️ Backup & Restore (admin only)
// =========================
func BackupRoutes(r *gin.Engine, app *App) {
	api := r.Group("/api/v1/backups", AuthMiddleware(), RoleMiddleware("admin"))
	{
		api.GET("", func(c *gin.Context) {
			GetAllBackups(c, app)
		})
		api.POST("", func(c *gin.Context) {
			ManualBackupHandler(c, app)
		})
		api.POST("/:id/restore", func(c *gin.Context) {
			RestoreBackupHandler(c, app)
		})
	}
}

// backupSummary keeps list responses small; snapshots can be big.
type backupSummary struct {
	BackupID  string `json:"backup_id"`
	Timestamp string `json:"timestamp"`
	Users     int    `json:"users"`
	Payments  int    `json:"payments"`
	Customers int    `json:"customers"`
	Suppliers int    `json:"suppliers"`
}

func GetAllBackups(c *gin.Context, app *App) {
	backups := app.Backups()
	data := make([]backupSummary, 0, len(backups))
	for _, b := range backups {
		data = append(data, backupSummary{
			BackupID:  b.BackupID,
			Timestamp: b.Timestamp,
			Users:     len(b.Users),
			Payments:  len(b.Payments),
			Customers: len(b.Customers),
			Suppliers: len(b.Suppliers),
		})
	}

	resp := gin.H{
		"message": "✅ Backups fetched",
		"data":    data,
	}
	if last := app.LastBackup(); last != nil {
		resp["lastBackup"] = last.BackupID
	}
	c.JSON(http.StatusOK, resp)
}

func ManualBackupHandler(c *gin.Context, app *App) {
	payload, verified, err := app.ManualBackup()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "❌ " + err.Error()})
		return
	}

	if !verified {
		c.JSON(http.StatusOK, gin.H{
			"message":   "⚠️ Backup attempted but could not be verified. Check logs",
			"backup_id": payload.BackupID,
			"verified":  false,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "✅ Manual backup completed and verified",
		"backup_id": payload.BackupID,
		"verified":  true,
		"total":     len(app.Backups()),
	})
}

func RestoreBackupHandler(c *gin.Context, app *App) {
	// Restoring overwrites all four live tables; the caller has to say so.
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "❌ Restore overwrites current data. Repeat with ?confirm=true"})
		return
	}

	if err := app.RestoreBackup(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "❌ " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "✅ Restore completed and data synced to remote store"})
}
