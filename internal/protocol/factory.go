package protocol

var commandFactory = map[Type]func() Command{
	Login:                          func() Command { return &LoginCommand{} },
	Logout:                         func() Command { return &LogoutCommand{} },
	Transaction:                    func() Command { return &TransactionCommand{} },
	CreateItem:                     func() Command { return &CreateItemCommand{} },
	CopyItems:                      func() Command { return &CopyItemsCommand{} },
	DeleteItems:                    func() Command { return &DeleteItemsCommand{} },
	FetchItems:                     func() Command { return &FetchItemsCommand{} },
	LinkItems:                      func() Command { return &LinkItemsCommand{} },
	ModifyItems:                    func() Command { return &ModifyItemsCommand{} },
	MoveItems:                      func() Command { return &MoveItemsCommand{} },
	CreateCollection:               func() Command { return &CreateCollectionCommand{} },
	CopyCollection:                 func() Command { return &CopyCollectionCommand{} },
	DeleteCollection:               func() Command { return &DeleteCollectionCommand{} },
	FetchCollections:               func() Command { return &FetchCollectionsCommand{} },
	FetchCollectionStats:           func() Command { return &FetchCollectionStatsCommand{} },
	ModifyCollection:               func() Command { return &ModifyCollectionCommand{} },
	MoveCollection:                 func() Command { return &MoveCollectionCommand{} },
	Search:                         func() Command { return &SearchCommand{} },
	SearchResult:                   func() Command { return &SearchResultCommand{} },
	StoreSearch:                    func() Command { return &StoreSearchCommand{} },
	CreateTag:                      func() Command { return &CreateTagCommand{} },
	DeleteTag:                      func() Command { return &DeleteTagCommand{} },
	FetchTags:                      func() Command { return &FetchTagsCommand{} },
	ModifyTag:                      func() Command { return &ModifyTagCommand{} },
	FetchRelations:                 func() Command { return &FetchRelationsCommand{} },
	ModifyRelation:                 func() Command { return &ModifyRelationCommand{} },
	RemoveRelations:                func() Command { return &RemoveRelationsCommand{} },
	SelectResource:                 func() Command { return &SelectResourceCommand{} },
	StreamPayload:                  func() Command { return &StreamPayloadCommand{} },
	ItemChangeNotification:         func() Command { return &ItemNotification{} },
	CollectionChangeNotification:   func() Command { return &CollectionNotification{} },
	TagChangeNotification:          func() Command { return &TagNotification{} },
	RelationChangeNotification:     func() Command { return &RelationNotification{} },
	SubscriptionChangeNotification: func() Command { return &SubscriptionNotification{} },
	DebugChangeNotification:        func() Command { return &DebugNotification{} },
	CreateSubscription:             func() Command { return &CreateSubscriptionCommand{} },
	ModifySubscription:             func() Command { return &ModifySubscriptionCommand{} },
}

var responseFactory = map[Type]func() Response{
	Hello:                func() Response { return &HelloResponse{} },
	Login:                func() Response { return &LoginResponse{} },
	Logout:               func() Response { return &LogoutResponse{} },
	Transaction:          func() Response { return &TransactionResponse{} },
	CreateItem:           func() Response { return &CreateItemResponse{} },
	CopyItems:            func() Response { return &CopyItemsResponse{} },
	DeleteItems:          func() Response { return &DeleteItemsResponse{} },
	FetchItems:           func() Response { return &FetchItemsResponse{} },
	LinkItems:            func() Response { return &LinkItemsResponse{} },
	ModifyItems:          func() Response { return &ModifyItemsResponse{} },
	MoveItems:            func() Response { return &MoveItemsResponse{} },
	CreateCollection:     func() Response { return &CreateCollectionResponse{} },
	CopyCollection:       func() Response { return &CopyCollectionResponse{} },
	DeleteCollection:     func() Response { return &DeleteCollectionResponse{} },
	FetchCollections:     func() Response { return &FetchCollectionsResponse{} },
	FetchCollectionStats: func() Response { return &FetchCollectionStatsResponse{} },
	ModifyCollection:     func() Response { return &ModifyCollectionResponse{} },
	MoveCollection:       func() Response { return &MoveCollectionResponse{} },
	Search:               func() Response { return &SearchResponse{} },
	SearchResult:         func() Response { return &SearchResultResponse{} },
	StoreSearch:          func() Response { return &StoreSearchResponse{} },
	CreateTag:            func() Response { return &CreateTagResponse{} },
	DeleteTag:            func() Response { return &DeleteTagResponse{} },
	FetchTags:            func() Response { return &FetchTagsResponse{} },
	ModifyTag:            func() Response { return &ModifyTagResponse{} },
	FetchRelations:       func() Response { return &FetchRelationsResponse{} },
	ModifyRelation:       func() Response { return &ModifyRelationResponse{} },
	RemoveRelations:      func() Response { return &RemoveRelationsResponse{} },
	SelectResource:       func() Response { return &SelectResourceResponse{} },
	StreamPayload:        func() Response { return &StreamPayloadResponse{} },
	CreateSubscription:   func() Response { return &CreateSubscriptionResponse{} },
	ModifySubscription:   func() Response { return &ModifySubscriptionResponse{} },
}

// NewCommand builds an empty command for t. Types without a command form,
// Invalid and anything carrying ResponseBit yield an *InvalidCommand.
func NewCommand(t Type) Command {
	if build, ok := commandFactory[t]; ok {
		return build()
	}
	return &InvalidCommand{RawType: t}
}

// NewResponse builds an empty response for t, which must be the bare type.
// Types without a response form yield an *InvalidResponse.
func NewResponse(t Type) Response {
	if build, ok := responseFactory[t]; ok {
		return build()
	}
	return &InvalidResponse{RawType: t | ResponseBit}
}

// HasCommand reports whether t has a command form.
func HasCommand(t Type) bool {
	_, ok := commandFactory[t]
	return ok
}

// HasResponse reports whether t has a response form.
func HasResponse(t Type) bool {
	_, ok := responseFactory[t]
	return ok
}
