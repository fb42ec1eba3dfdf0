package routes

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"trendmart/db"
	"trendmart/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust this for production
	},
}

// Connected stock-feed clients map with mutex for thread safety
var stockClients = make(map[*websocket.Conn]bool)
var stockFeed = make(chan []byte, 100) // Buffered channel to prevent blocking
var mutex = &sync.Mutex{}
var broadcastOnce sync.Once
var validate = validator.New()

type ProductListResponse struct {
	Products []models.Product `json:"products"`
}

type VariationListResponse struct {
	Variations []models.ProductVariation `json:"variations"`
}

type Pagination struct {
	CurrentPage   int `json:"currentPage"`
	TotalPages    int `json:"totalPages"`
	TotalProducts int `json:"totalProducts"`
	Limit         int `json:"limit"`
}

type FilteredProductsResponse struct {
	Products   []models.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

// ProductDataUpdate carries a partial update of the nested product data
// object. Nil fields are left untouched so a price change cannot wipe the
// description.
type ProductDataUpdate struct {
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
	Rating      *float64 `json:"rating"`
	IsNew       *bool    `json:"isNew"`
	Brand       *string  `json:"brand"`
	Category    *string  `json:"category"`
	ModelNumber *string  `json:"modelNumber"`
}

// UpdateProductRequest merges field-by-field into the stored product. A
// non-nil Variations slice (even an empty one) replaces every existing
// variation of the product.
type UpdateProductRequest struct {
	ID             string                     `json:"id" validate:"required"`
	Name           *string                    `json:"name"`
	Image          *string                    `json:"image"`
	BasePrice      *float64                   `json:"basePrice"`
	AvailableSizes *[]string                  `json:"availableSizes"`
	Tags           *[]string                  `json:"tags"`
	IsFeatured     *bool                      `json:"isFeatured"`
	IsActive       *bool                      `json:"isActive"`
	Data           *ProductDataUpdate         `json:"data"`
	Variations     *[]models.ProductVariation `json:"variations"`
}

type UpdateVariationRequest struct {
	ColorName        *string                    `json:"colorName"`
	ColorCode        *string                    `json:"colorCode"`
	VariationImages  *[]string                  `json:"variationImages"`
	MainImage        *string                    `json:"mainImage"`
	StockQuantity    *int                       `json:"stockQuantity"`
	IsAvailable      *bool                      `json:"isAvailable"`
	SizeAvailability *[]models.SizeAvailability `json:"sizeAvailability"`
	ProductID        *string                    `json:"productId"`
}

type UpdateStockRequest struct {
	VariationID string `json:"variationId" validate:"required"`
	Size        string `json:"size" validate:"required"`
	NewStock    int    `json:"newStock" validate:"gte=0"`
}

type StockUpdateEvent struct {
	VariationID string `json:"variationId"`
	Size        string `json:"size"`
	Stock       int    `json:"stock"`
}

// Whitelist of sortable columns for the filtered listing. Unknown sortBy
// values fall back to createdAt.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"basePrice": "base_price",
	"price":     "data_price",
	"rating":    "data_rating",
}

func SetupRoutes(app *fiber.App) {

	wsHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("Error upgrading:", err)
			return
		}
		defer conn.Close()

		mutex.Lock()
		stockClients[conn] = true
		mutex.Unlock()
		log.Println("Stock feed client connected:", conn.RemoteAddr())

		// The feed is one-way; keep reading until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("WebSocket read error: %v", err)
				}
				mutex.Lock()
				delete(stockClients, conn)
				mutex.Unlock()
				log.Println("Stock feed client disconnected:", conn.RemoteAddr())
				break
			}
		}
	})

	// Push stock updates to all connected clients
	broadcastOnce.Do(func() {
		go func() {
			for message := range stockFeed {
				mutex.Lock()
				for client := range stockClients {
					if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
						log.Printf("WebSocket write error: %v", err)
						client.Close()
						delete(stockClients, client)
					}
				}
				mutex.Unlock()
			}
		}()
	})

	// Mount WebSocket endpoint
	app.Get("/ws", wsHandler)
	// Image upload route
	app.Post("/upload", uploadImage)

	// Product CRUD
	app.Get("/get/products", getProducts)
	app.Post("/create/product", createProduct)
	app.Put("/update/product", updateProduct)
	app.Delete("/delete/product/:id", deleteProduct)

	// Single product + variations
	app.Get("/get/product/:id", getProductById)
	app.Get("/get/variations/:productId", getProductVariations)

	// Variation management
	app.Post("/add/variation/:productId", addVariation)
	app.Put("/update/variation/:variationId", updateVariation)
	app.Delete("/delete/variation/:variationId", deleteVariation)

	// Search/filter
	app.Get("/get/productcolors/:color", getProductsByColor)
	app.Get("/get/category/:category", getProductsByCategory)
	app.Get("/get/featured", getFeaturedProducts)
	app.Get("/get/filtered", getFilteredProducts)

	// Inventory
	app.Put("/update/stock", updateStock)
}

// Image upload handler
func uploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to get uploaded file",
		})
	}

	// Generate unique filename
	ext := filepath.Ext(file.Filename)
	uniqueID := uuid.New().String()
	filename := uniqueID + ext
	filepath := "./uploads/" + filename

	// Save the file
	if err := c.SaveFile(file, filepath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save file",
		})
	}

	// Return the file path that can be stored in the database
	return c.JSON(fiber.Map{
		"filename": filename,
		"path":     "/uploads/" + filename,
	})
}

// resolveVariations replaces the product's variation refs with the full
// variation records, preserving ref order. Dangling refs are skipped.
func resolveVariations(product *models.Product) error {
	product.Variations = []models.ProductVariation{}
	if len(product.VariationRefs) == 0 {
		return nil
	}

	var variations []models.ProductVariation
	if err := db.DB.Where("id IN ?", []string(product.VariationRefs)).Find(&variations).Error; err != nil {
		return err
	}

	byID := make(map[string]models.ProductVariation, len(variations))
	for _, v := range variations {
		byID[v.ID] = v
	}

	resolved := make([]models.ProductVariation, 0, len(product.VariationRefs))
	for _, ref := range product.VariationRefs {
		if v, ok := byID[ref]; ok {
			resolved = append(resolved, v)
		}
	}
	product.Variations = resolved
	return nil
}

func resolveAllVariations(products []models.Product) error {
	for i := range products {
		if err := resolveVariations(&products[i]); err != nil {
			return err
		}
	}
	return nil
}

func removeRef(refs datatypes.JSONSlice[string], id string) datatypes.JSONSlice[string] {
	remaining := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref != id {
			remaining = append(remaining, ref)
		}
	}
	return datatypes.JSONSlice[string](remaining)
}

func publishStockUpdate(event StockUpdateEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		log.Println("Failed to marshal stock update:", err)
		return
	}
	stockFeed <- message
}

// GetProducts - GET /get/products
func getProducts(c *fiber.Ctx) error {
	var products []models.Product

	if err := db.DB.Order("created_at DESC").Find(&products).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get products",
		})
	}

	if err := resolveAllVariations(products); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load product variations",
		})
	}

	return c.JSON(ProductListResponse{Products: products})
}

// CreateProduct - POST /create/product
//
// Embedded variations are created first, their ids collected in submission
// order into the product's variation refs, and their productId back-filled
// once the product row exists. The whole sequence runs in one transaction.
func createProduct(c *fiber.Ctx) error {
	product := new(models.Product)
	if err := c.BodyParser(product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if err := validate.Struct(product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": err.Error(),
		})
	}
	for i := range product.Variations {
		if err := validate.Struct(&product.Variations[i]); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "Validation failed",
				"details": err.Error(),
			})
		}
	}

	variations := product.Variations
	product.Variations = nil
	product.ID = ""

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if len(variations) > 0 {
			refs := make([]string, 0, len(variations))
			for i := range variations {
				variations[i].ID = ""
				variations[i].ProductID = ""
				if err := tx.Create(&variations[i]).Error; err != nil {
					return err
				}
				refs = append(refs, variations[i].ID)
			}
			product.VariationRefs = datatypes.JSONSlice[string](refs)
		}

		if err := tx.Create(product).Error; err != nil {
			return err
		}

		// Back-fill product_id on the embedded variations
		if len(product.VariationRefs) > 0 {
			if err := tx.Model(&models.ProductVariation{}).
				Where("id IN ?", []string(product.VariationRefs)).
				Update("product_id", product.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create product",
		})
	}

	var created models.Product
	if err := db.DB.First(&created, "id = ?", product.ID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Product created but failed to load details",
		})
	}
	if err := resolveVariations(&created); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Product created but failed to load variations",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateProduct - PUT /update/product
//
// Two-level merge: top-level fields overlay the stored product, then the
// nested data object is merged field-by-field. A present variations slice
// replaces all existing variations with freshly created records.
func updateProduct(c *fiber.Ctx) error {
	var req UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": err.Error(),
		})
	}

	var existing models.Product
	if err := db.DB.First(&existing, "id = ?", req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find product",
		})
	}

	if req.Variations != nil {
		for i := range *req.Variations {
			if err := validate.Struct(&(*req.Variations)[i]); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error":   "Validation failed",
					"details": err.Error(),
				})
			}
		}
	}

	// Top-level overlay
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Image != nil {
		existing.Image = *req.Image
	}
	if req.BasePrice != nil {
		existing.BasePrice = *req.BasePrice
	}
	if req.AvailableSizes != nil {
		existing.AvailableSizes = datatypes.JSONSlice[string](*req.AvailableSizes)
	}
	if req.Tags != nil {
		existing.Tags = datatypes.JSONSlice[string](*req.Tags)
	}
	if req.IsFeatured != nil {
		existing.IsFeatured = *req.IsFeatured
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	// Nested data merge
	if req.Data != nil {
		if req.Data.Price != nil {
			existing.Data.Price = *req.Data.Price
		}
		if req.Data.Description != nil {
			existing.Data.Description = *req.Data.Description
		}
		if req.Data.Rating != nil {
			existing.Data.Rating = *req.Data.Rating
		}
		if req.Data.IsNew != nil {
			existing.Data.IsNew = *req.Data.IsNew
		}
		if req.Data.Brand != nil {
			existing.Data.Brand = *req.Data.Brand
		}
		if req.Data.Category != nil {
			existing.Data.Category = *req.Data.Category
		}
		if req.Data.ModelNumber != nil {
			existing.Data.ModelNumber = *req.Data.ModelNumber
		}
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if req.Variations != nil {
			// Full replace: old variations go away, the payload becomes the
			// new set with fresh identities.
			if len(existing.VariationRefs) > 0 {
				if err := tx.Where("id IN ?", []string(existing.VariationRefs)).
					Delete(&models.ProductVariation{}).Error; err != nil {
					return err
				}
			}

			newVariations := *req.Variations
			refs := make([]string, 0, len(newVariations))
			for i := range newVariations {
				newVariations[i].ID = ""
				newVariations[i].ProductID = existing.ID
				if err := tx.Create(&newVariations[i]).Error; err != nil {
					return err
				}
				refs = append(refs, newVariations[i].ID)
			}
			existing.VariationRefs = datatypes.JSONSlice[string](refs)
		}

		return tx.Save(&existing).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update product",
		})
	}

	if err := resolveVariations(&existing); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Product updated but failed to load variations",
		})
	}

	return c.JSON(existing)
}

// DeleteProduct - DELETE /delete/product/:id
//
// Cascades: every variation referenced by the product is deleted with it.
func deleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")

	var product models.Product
	if err := db.DB.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find product",
		})
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if len(product.VariationRefs) > 0 {
			if err := tx.Where("id IN ?", []string(product.VariationRefs)).
				Delete(&models.ProductVariation{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&product).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete product",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
	})
}

// GetProductById - GET /get/product/:id
func getProductById(c *fiber.Ctx) error {
	id := c.Params("id")

	var product models.Product
	if err := db.DB.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get product",
		})
	}

	if err := resolveVariations(&product); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load product variations",
		})
	}

	return c.JSON(product)
}

// GetProductVariations - GET /get/variations/:productId
//
// Queries by the variation back-reference, not by the product's refs.
func getProductVariations(c *fiber.Ctx) error {
	productID := c.Params("productId")

	var variations []models.ProductVariation
	if err := db.DB.Where("product_id = ?", productID).Find(&variations).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get variations",
		})
	}

	return c.JSON(VariationListResponse{Variations: variations})
}

// AddVariation - POST /add/variation/:productId
func addVariation(c *fiber.Ctx) error {
	productID := c.Params("productId")

	var product models.Product
	if err := db.DB.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find product",
		})
	}

	variation := new(models.ProductVariation)
	if err := c.BodyParser(variation); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if err := validate.Struct(variation); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": err.Error(),
		})
	}

	variation.ID = ""
	variation.ProductID = product.ID

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(variation).Error; err != nil {
			return err
		}
		refs := append([]string(product.VariationRefs), variation.ID)
		return tx.Model(&product).
			Update("variation_refs", datatypes.JSONSlice[string](refs)).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add variation",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(variation)
}

// UpdateVariation - PUT /update/variation/:variationId
//
// Partial update of a single variation; the owning product is not touched.
func updateVariation(c *fiber.Ctx) error {
	variationID := c.Params("variationId")

	var req UpdateVariationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	var variation models.ProductVariation
	if err := db.DB.First(&variation, "id = ?", variationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Variation not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find variation",
		})
	}

	if req.ColorName != nil {
		variation.ColorName = *req.ColorName
	}
	if req.ColorCode != nil {
		variation.ColorCode = *req.ColorCode
	}
	if req.VariationImages != nil {
		variation.VariationImages = datatypes.JSONSlice[string](*req.VariationImages)
	}
	if req.MainImage != nil {
		variation.MainImage = *req.MainImage
	}
	if req.StockQuantity != nil {
		variation.StockQuantity = *req.StockQuantity
	}
	if req.IsAvailable != nil {
		variation.IsAvailable = *req.IsAvailable
	}
	if req.SizeAvailability != nil {
		variation.SizeAvailability = datatypes.JSONSlice[models.SizeAvailability](*req.SizeAvailability)
	}
	if req.ProductID != nil {
		variation.ProductID = *req.ProductID
	}

	if err := db.DB.Save(&variation).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update variation",
		})
	}

	return c.JSON(variation)
}

// DeleteVariation - DELETE /delete/variation/:variationId
//
// Pulls the variation id out of the owning product's refs before deleting
// the variation itself.
func deleteVariation(c *fiber.Ctx) error {
	variationID := c.Params("variationId")

	var variation models.ProductVariation
	if err := db.DB.First(&variation, "id = ?", variationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Variation not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find variation",
		})
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if variation.ProductID != "" {
			var product models.Product
			if err := tx.First(&product, "id = ?", variation.ProductID).Error; err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				// Owner already gone, nothing to detach
			} else {
				refs := removeRef(product.VariationRefs, variation.ID)
				if err := tx.Model(&product).Update("variation_refs", refs).Error; err != nil {
					return err
				}
			}
		}
		return tx.Delete(&variation).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete variation",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Variation deleted successfully",
	})
}

// GetProductsByColor - GET /get/productcolors/:color
//
// Case-insensitive substring search over available variations; the owning
// product is resolved inline on each hit.
func getProductsByColor(c *fiber.Ctx) error {
	color := c.Params("color")
	pattern := "%" + strings.ToLower(color) + "%"

	var variations []models.ProductVariation
	if err := db.DB.Where("is_available = ? AND LOWER(color_name) LIKE ?", true, pattern).
		Find(&variations).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search variations",
		})
	}

	for i := range variations {
		if variations[i].ProductID == "" {
			continue
		}
		var product models.Product
		if err := db.DB.First(&product, "id = ?", variations[i].ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to load owning product",
			})
		}
		variations[i].Product = &product
	}

	return c.JSON(VariationListResponse{Variations: variations})
}

// GetProductsByCategory - GET /get/category/:category
func getProductsByCategory(c *fiber.Ctx) error {
	category := c.Params("category")
	pattern := "%" + strings.ToLower(category) + "%"

	var products []models.Product
	if err := db.DB.Where("is_active = ? AND LOWER(data_category) LIKE ?", true, pattern).
		Find(&products).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search products",
		})
	}

	if err := resolveAllVariations(products); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load product variations",
		})
	}

	return c.JSON(ProductListResponse{Products: products})
}

// GetFeaturedProducts - GET /get/featured
func getFeaturedProducts(c *fiber.Ctx) error {
	var products []models.Product

	if err := db.DB.Where("is_featured = ? AND is_active = ?", true, true).
		Order("created_at DESC").Find(&products).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get featured products",
		})
	}

	if err := resolveAllVariations(products); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load product variations",
		})
	}

	return c.JSON(ProductListResponse{Products: products})
}

// GetFilteredProducts - GET /get/filtered
//
// Active products only. Non-positive page/limit clamp to the defaults.
func getFilteredProducts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 10)
	if limit < 1 {
		limit = 10
	}

	dbQuery := db.DB.Where("is_active = ?", true)

	if category := c.Query("category"); category != "" {
		dbQuery = dbQuery.Where("LOWER(data_category) LIKE ?", "%"+strings.ToLower(category)+"%")
	}
	if brand := c.Query("brand"); brand != "" {
		dbQuery = dbQuery.Where("LOWER(data_brand) LIKE ?", "%"+strings.ToLower(brand)+"%")
	}
	if raw := c.Query("minPrice"); raw != "" {
		if minPrice, err := strconv.ParseFloat(raw, 64); err == nil {
			dbQuery = dbQuery.Where("data_price >= ?", minPrice)
		}
	}
	if raw := c.Query("maxPrice"); raw != "" {
		if maxPrice, err := strconv.ParseFloat(raw, 64); err == nil {
			dbQuery = dbQuery.Where("data_price <= ?", maxPrice)
		}
	}

	column, ok := sortColumns[c.Query("sortBy", "createdAt")]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if c.Query("sortOrder", "desc") == "desc" {
		direction = "DESC"
	}

	var total int64
	if err := dbQuery.Model(&models.Product{}).Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to count products",
		})
	}

	var products []models.Product
	if err := dbQuery.Order(column + " " + direction).
		Offset((page - 1) * limit).Limit(limit).
		Find(&products).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get products",
		})
	}

	if err := resolveAllVariations(products); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load product variations",
		})
	}

	return c.JSON(FilteredProductsResponse{
		Products: products,
		Pagination: Pagination{
			CurrentPage:   page,
			TotalPages:    int(math.Ceil(float64(total) / float64(limit))),
			TotalProducts: int(total),
			Limit:         limit,
		},
	})
}

// UpdateStock - PUT /update/stock
//
// Sets the stock of the single sizeAvailability entry matching the given
// size. Emulated as a read-modify-write inside a transaction since the JSON
// column has no positional update.
func updateStock(c *fiber.Ctx) error {
	var req UpdateStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": err.Error(),
		})
	}

	var variation models.ProductVariation
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&variation, "id = ?", req.VariationID).Error; err != nil {
			return err
		}
		for i := range variation.SizeAvailability {
			if variation.SizeAvailability[i].Size == req.Size {
				variation.SizeAvailability[i].Stock = req.NewStock
				return tx.Model(&variation).
					Update("size_availability", variation.SizeAvailability).Error
			}
		}
		return gorm.ErrRecordNotFound
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Variation or size not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update stock",
		})
	}

	publishStockUpdate(StockUpdateEvent{
		VariationID: variation.ID,
		Size:        req.Size,
		Stock:       req.NewStock,
	})

	return c.JSON(variation)
}
