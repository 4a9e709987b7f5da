package catalog

import "strings"

// Product is a catalog product record.
type Product struct {
	ID          int     `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Price       float64 `json:"price" yaml:"price"`
	Description string  `json:"description" yaml:"description"`
	Category    string  `json:"category" yaml:"category"`
	Image       string  `json:"image" yaml:"image"`
	Rating      Rating  `json:"rating" yaml:"rating"`
}

// Rating is the aggregate review score of a product.
type Rating struct {
	Rate  float64 `json:"rate" yaml:"rate"`
	Count int     `json:"count" yaml:"count"`
}

// User is a catalog user record. The password field of the wire format is
// intentionally not decoded.
type User struct {
	ID       int     `json:"id" yaml:"id"`
	Email    string  `json:"email" yaml:"email"`
	Username string  `json:"username" yaml:"username"`
	Phone    string  `json:"phone" yaml:"phone"`
	Name     Name    `json:"name" yaml:"name"`
	Address  Address `json:"address" yaml:"address"`
}

type Name struct {
	Firstname string `json:"firstname" yaml:"firstname"`
	Lastname  string `json:"lastname" yaml:"lastname"`
}

type Address struct {
	City    string `json:"city" yaml:"city"`
	Street  string `json:"street" yaml:"street"`
	Number  int    `json:"number" yaml:"number"`
	Zipcode string `json:"zipcode" yaml:"zipcode"`
}

// FullName joins first and last name with a single space.
func (u User) FullName() string {
	return strings.TrimSpace(u.Name.Firstname + " " + u.Name.Lastname)
}
