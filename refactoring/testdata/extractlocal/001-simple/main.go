package main

import "fmt"

func main() {
	a, b := 3, 4
	fmt.Println(a*b + 1)
	fmt.Println(a * b)
}

//<<<<<extractlocal,7,14,7,17,prod,false,pass
