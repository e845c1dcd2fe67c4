package entity

// Client datos del cliente para la orden (sólo lectura, desde el ERP).
type Client struct {
	Code             string
	BusinessName     string
	Address          string
	Address1         string
	Address2         string
	Address3         string
	ZipCode          string
	CUIT             string
	IIBB             string
	IVACondition     string
	DeliveryAddress1 string
	DeliveryAddress2 string
	DeliveryAddress3 string
	DeliveryAddress4 string
	CountryCode      string // código de país del ERP (exportación)
	CountryCUIT      string // CUIT país del cliente del exterior
}
