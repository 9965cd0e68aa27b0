package graph

// apiSchema is served behind the auth gate.
const apiSchema = `
	schema {
		query: Query
		mutation: Mutation
	}

	# A registered user
	type User {
		id: ID!
		name: String!
		email: String!
		password: String!
		avatar: String!
		messages: Page!
		moreMessages(cursor: String!): Page!
	}

	# A message posted by a user
	type Message {
		id: ID!
		text: String!
		userId: String!
		date: String!
		likes: Int!
		posted: String!
		user: User!
	}

	# Up to five messages in ascending date order. cursor is the date of the
	# last message, or "" when data is empty.
	type Page {
		data: [Message!]!
		cursor: String!
	}

	type Removed {
		id: ID!
	}

	type Query {
		messages: Page!
		moreMessages(cursor: String!): Page!
		messagesByUserId(id: String!): Page!
		moreMessagesByUserId(id: String!, cursor: String!): Page!
		message(id: String!): Message
		user(id: String!): User
		userByEmail(email: String!): User
	}

	type Mutation {
		addMessage(text: String!, userId: String!): Message
		removeMessage(id: String!): Removed
	}
`

// loginSchema is served without authentication.
const loginSchema = `
	schema {
		query: Query
		mutation: Mutation
	}

	type User {
		id: ID!
		name: String!
		email: String!
		password: String!
		avatar: String!
	}

	type Token {
		token: String!
		userId: String!
	}

	type Query {
		login(email: String!, password: String!): Token
	}

	type Mutation {
		addUser(name: String!, email: String!, password: String!): User
	}
`
