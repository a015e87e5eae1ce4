package models

// All returns every relational model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Follow{},
		&Group{},
		&GroupMembership{},
		&Notification{},
		&Post{},
		&Comment{},
		&Reaction{},
	}
}
