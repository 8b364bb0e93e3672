package constants

const (
	AppCatalogService = "catalog-service"
	AudienceCatalog   = "audience-catalog"

	ScopeCatalogRead  = "catalog:read"
	ScopeCatalogWrite = "catalog:write"
)
