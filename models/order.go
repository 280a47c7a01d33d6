package models

import "time"

// CustomerDetails is the customer snapshot embedded in an order.
type CustomerDetails struct {
	Name      string  `bson:"name" json:"name"`
	Contact   string  `bson:"contact" json:"contact"`
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
	Address   string  `bson:"address,omitempty" json:"address,omitempty"`
}

// CartItem is a purchased line item snapshot.
type CartItem struct {
	ItemID      string  `bson:"itemId" json:"item_id"`
	ItemName    string  `bson:"itemName" json:"item_name"`
	Quantity    int     `bson:"quantity" json:"quantity"`
	PortionSize string  `bson:"potionSize" json:"portion_size"` // field name kept as stored by order-service
	Price       float64 `bson:"price" json:"price"`
	TotalPrice  float64 `bson:"totalPrice" json:"total_price"`
	Image       string  `bson:"image,omitempty" json:"image,omitempty"`
}

// DriverDetails is the driver snapshot the order DB carries once a driver
// is assigned. Latitude/Longitude are the last position the order-service
// happened to persist and may lag the live location channel.
type DriverDetails struct {
	DriverID      string   `bson:"driverId,omitempty" json:"driver_id,omitempty"`
	DriverName    string   `bson:"driverName,omitempty" json:"driver_name,omitempty"`
	VehicleNumber string   `bson:"vehicleNumber,omitempty" json:"vehicle_number,omitempty"`
	Latitude      *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude     *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
}

// Order is the order-of-record document, owned by order-service. This
// service reads it to synthesize delivery views and writes back only
// orderStatus and driverDetails.
type Order struct {
	OrderID         string          `bson:"_id" json:"order_id"`
	CustomerID      string          `bson:"customerId" json:"customer_id"`
	RestaurantID    string          `bson:"restaurantId" json:"restaurant_id"`
	CustomerDetails CustomerDetails `bson:"customerDetails" json:"customer_details"`
	CartItems       []CartItem      `bson:"cartItems" json:"cart_items"`
	OrderTotal      float64         `bson:"orderTotal" json:"order_total"`
	DeliveryFee     float64         `bson:"deliveryFee" json:"delivery_fee"`
	TotalAmount     float64         `bson:"totalAmount" json:"total_amount"`
	PaymentType     string          `bson:"paymentType,omitempty" json:"payment_type,omitempty"`
	OrderStatus     string          `bson:"orderStatus" json:"order_status"`
	DriverDetails   *DriverDetails  `bson:"driverDetails,omitempty" json:"driver_details,omitempty"`
	CreatedAt       time.Time       `bson:"createdAt" json:"created_at"`
	UpdatedAt       time.Time       `bson:"updatedAt" json:"updated_at"`
}
