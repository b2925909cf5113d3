package api

import "time"

// Course is a read-only catalog course. The server's _id is exposed as ID.
type Course struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Rating           float64   `json:"rating"`
	RatingCount      int       `json:"numReviews,omitempty"`
	Thumbnail        string    `json:"thumbnail,omitempty"`
	VideoURL         string    `json:"videoUrl,omitempty"`
	PreviewURL       string    `json:"previewUrl,omitempty"`
	Price            float64   `json:"price"`
	DiscountPrice    float64   `json:"discountPrice,omitempty"`
	Currency         string    `json:"currency,omitempty"`
	Category         string    `json:"category,omitempty"`
	Instructor       string    `json:"instructor,omitempty"`
	Duration         string    `json:"duration,omitempty"`
	WhatYouWillLearn []string  `json:"whatYouWillLearn,omitempty"`
	CreatedAt        time.Time `json:"createdAt,omitempty"`
}

// EntityID implements the identity used for de-duplication.
func (c Course) EntityID() string { return c.ID }

// Reel is a short featured video promoting a course.
type Reel struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	VideoURL  string `json:"videoUrl"`
	Thumbnail string `json:"thumbnail,omitempty"`
	CourseID  string `json:"courseId,omitempty"`
	Views     int    `json:"views,omitempty"`
}

func (r Reel) EntityID() string { return r.ID }

// Ad is a promotional banner.
type Ad struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"image"`
	Link     string `json:"link,omitempty"`
	Type     string `json:"type,omitempty"`
}

func (a Ad) EntityID() string { return a.ID }

// Product is a purchasable catalog item.
type Product struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Price        float64  `json:"price"`
	Images       []string `json:"images,omitempty"`
	Category     string   `json:"category,omitempty"`
	Rating       float64  `json:"rating"`
	NumReviews   int      `json:"numReviews,omitempty"`
	CountInStock int      `json:"countInStock"`
}

func (p Product) EntityID() string { return p.ID }

// User is the signed-in account profile.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Bio          string `json:"bio,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
	CoverImage   string `json:"coverImage,omitempty"`
	Role         string `json:"role,omitempty"`
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ItemID   string  `json:"itemId"`
	ItemType string  `json:"itemType,omitempty"`
	Name     string  `json:"name,omitempty"`
	Quantity int     `json:"qty"`
	Price    float64 `json:"price"`
}

// Order is a server-owned purchase record.
type Order struct {
	ID            string      `json:"id"`
	Items         []OrderItem `json:"orderItems"`
	TotalPrice    float64     `json:"totalPrice"`
	PaymentMethod string      `json:"paymentMethod,omitempty"`
	PaymentID     string      `json:"paymentId,omitempty"`
	IsPaid        bool        `json:"isPaid"`
	Status        string      `json:"status,omitempty"`
	CreatedAt     time.Time   `json:"createdAt,omitempty"`
}

func (o Order) EntityID() string { return o.ID }

// OrderRequest creates an order.
type OrderRequest struct {
	Items         []OrderItem `json:"orderItems"`
	TotalPrice    float64     `json:"totalPrice"`
	PaymentMethod string      `json:"paymentMethod,omitempty"`
	PaymentID     string      `json:"paymentId,omitempty"`
}

// PaymentIntent carries the client secret used to confirm a card payment.
type PaymentIntent struct {
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency,omitempty"`
}

// Review is a rating left on a course or product.
type Review struct {
	ID         string    `json:"id"`
	TargetType string    `json:"type"`
	TargetID   string    `json:"targetId"`
	UserName   string    `json:"name,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

func (r Review) EntityID() string { return r.ID }

// ReviewRequest creates or updates a review.
type ReviewRequest struct {
	TargetType string `json:"type,omitempty"`
	TargetID   string `json:"targetId,omitempty"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

// Enrollment links the signed-in user to a course.
type Enrollment struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"courseId"`
	Course     *Course   `json:"course,omitempty"`
	Progress   float64   `json:"progress"`
	Status     string    `json:"status,omitempty"`
	EnrolledAt time.Time `json:"enrolledAt,omitempty"`
}

func (e Enrollment) EntityID() string { return e.ID }

// Policy is a legal/terms document.
type Policy struct {
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// StripeConfig carries the publishable key for the payment sheet.
type StripeConfig struct {
	PublishableKey string `json:"publishableKey"`
}

// Ack is the payload of operations that only confirm success.
type Ack struct {
	Message string `json:"message,omitempty"`
}

// PageQuery selects one page of a paginated listing.
type PageQuery struct {
	Page  int
	Limit int
}
